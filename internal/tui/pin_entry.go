// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/toeirei/pinvault/internal/i18n"
)

// pinEntryModel is the PIN prompt shown on every launch once a key is
// stored.
type pinEntryModel struct {
	input textinput.Model
}

func newPinEntryModel() pinEntryModel {
	t := textinput.New()
	t.Cursor.Style = focusedStyle
	t.Prompt = i18n.T("login.pin_prompt") + ": "
	t.EchoMode = textinput.EchoPassword
	t.CharLimit = 4
	t.Width = 12
	return pinEntryModel{input: t}
}

func (p *pinEntryModel) focus() {
	p.input.Focus()
	p.input.TextStyle = focusedStyle
}

func (p pinEntryModel) blink() tea.Cmd {
	return textinput.Blink
}

func (p pinEntryModel) view(errMsg string) string {
	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	if errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(
		i18n.T("login.submit_hint") + " · " + i18n.T("login.reset_hint") + " · " + i18n.T("login.quit_hint")))
	return b.String()
}

func (m Model) updatePinEntry(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, tea.Quit
		case "ctrl+r":
			if err := m.gate.Reset(); err != nil {
				m.errMsg = errorText(err)
				return m, nil
			}
			m.errMsg = ""
			m.pinEntry.input.SetValue("")
			m.view = keyFormView
			m.keyForm.focus()
			return m, m.keyForm.blink()
		case "enter":
			candidate := strings.TrimSpace(m.pinEntry.input.Value())
			if _, err := m.gate.SubmitPin(candidate); err != nil {
				m.errMsg = errorText(err)
				m.pinEntry.input.SetValue("")
				return m, nil
			}
			m.errMsg = ""
			m.view = unlockedView
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.pinEntry.input, cmd = m.pinEntry.input.Update(msg)
	return m, cmd
}
