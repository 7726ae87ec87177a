// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/toeirei/pinvault/internal/i18n"
)

// keyFormModel is the first-run form asking for the provider API key.
type keyFormModel struct {
	input textinput.Model
}

func newKeyFormModel() keyFormModel {
	t := textinput.New()
	t.Cursor.Style = focusedStyle
	t.Prompt = i18n.T("login.key_prompt") + ": "
	t.Placeholder = i18n.T("login.key_placeholder")
	t.EchoMode = textinput.EchoPassword
	t.CharLimit = 200
	t.Width = 48
	return keyFormModel{input: t}
}

func (f *keyFormModel) focus() {
	f.input.Focus()
	f.input.TextStyle = focusedStyle
}

func (f keyFormModel) blink() tea.Cmd {
	return textinput.Blink
}

func (f keyFormModel) view(errMsg string) string {
	var b strings.Builder
	b.WriteString(f.input.View())
	b.WriteString("\n\n")
	if errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(i18n.T("login.submit_hint") + " · " + i18n.T("login.quit_hint")))
	return b.String()
}

func (m Model) updateKeyForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, tea.Quit
		case "enter":
			candidate := strings.TrimSpace(m.keyForm.input.Value())
			if candidate == "" {
				m.errMsg = i18n.T("error.empty_key")
				return m, nil
			}
			m.errMsg = ""
			m.view = checkingView
			g := m.gate
			return m, func() tea.Msg {
				issued, err := g.SubmitAPIKey(context.Background(), candidate)
				return keyCheckedMsg{issued: issued, err: err}
			}
		}
	}

	var cmd tea.Cmd
	m.keyForm.input, cmd = m.keyForm.input.Update(msg)
	return m, cmd
}
