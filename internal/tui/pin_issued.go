// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/toeirei/pinvault/internal/i18n"
)

// pinIssuedView renders the one-time PIN display. The PIN exists only in
// this model until the user acknowledges; it is never shown again.
func (m Model) pinIssuedView() string {
	var b strings.Builder
	b.WriteString(successStyle.Render(i18n.T("login.pin_issued_title")))
	b.WriteString("\n\n")
	b.WriteString(pinStyle.Render(m.issued.PIN))
	b.WriteString("\n\n")
	b.WriteString(i18n.Tf("login.pin_issued_body", map[string]any{"PIN": m.issued.PIN}))
	b.WriteString("\n\n")
	if m.infoMsg != "" {
		b.WriteString(m.infoMsg)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(i18n.T("login.pin_issued_hint")))
	return b.String()
}

func (m Model) updatePinIssued(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "c":
		// Clipboard errors are non-fatal; the PIN is still on screen.
		if err := clipboard.WriteAll(m.issued.PIN); err == nil {
			m.infoMsg = i18n.T("login.copied")
		}
		return m, nil
	case "enter":
		m.gate.ConfirmPinIssued()
		m.issued = nil
		m.infoMsg = ""
		m.errMsg = ""
		m.view = pinEntryView
		m.pinEntry.focus()
		return m, m.pinEntry.blink()
	}
	return m, nil
}
