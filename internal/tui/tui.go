// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal login flow for Pinvault. This file
// contains the top-level model that routes between the first-run key form,
// the one-time PIN display and the PIN entry prompt.
package tui // import "github.com/toeirei/pinvault/internal/tui"

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/toeirei/pinvault/internal/gate"
	"github.com/toeirei/pinvault/internal/i18n"
	"github.com/toeirei/pinvault/internal/model"
)

// viewState represents which part of the login flow is currently active.
type viewState int

const (
	// keyFormView is the first-run key registration form.
	keyFormView viewState = iota
	// checkingView is shown while the validation call is in flight.
	checkingView
	// pinIssuedView shows the freshly generated PIN exactly once.
	pinIssuedView
	// pinEntryView asks for the PIN on every later launch.
	pinEntryView
	// unlockedView is the terminal state before the program exits.
	unlockedView
)

// AuthGate is the slice of the auth gate the TUI depends on.
type AuthGate interface {
	Mode() model.AuthState
	SubmitAPIKey(ctx context.Context, apiKey string) (*gate.Issued, error)
	ConfirmPinIssued()
	SubmitPin(pin string) (string, error)
	Reset() error
	UnlockedKey() string
}

// keyCheckedMsg carries the result of the async key validation.
type keyCheckedMsg struct {
	issued *gate.Issued
	err    error
}

// Model is the top-level bubbletea model for the login flow.
type Model struct {
	gate AuthGate
	view viewState

	keyForm  keyFormModel
	pinEntry pinEntryModel
	issued   *gate.Issued

	errMsg  string
	infoMsg string
}

// NewModel builds the login model; the initial view follows the gate's
// mode: PIN entry when credentials exist, the key form otherwise.
func NewModel(g AuthGate) Model {
	m := Model{
		gate:     g,
		keyForm:  newKeyFormModel(),
		pinEntry: newPinEntryModel(),
	}
	if g.Mode() == model.StatePinEntry {
		m.view = pinEntryView
		m.pinEntry.focus()
	} else {
		m.view = keyFormView
		m.keyForm.focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.cursorBlink()
}

func (m Model) cursorBlink() tea.Cmd {
	switch m.view {
	case keyFormView:
		return m.keyForm.blink()
	case pinEntryView:
		return m.pinEntry.blink()
	default:
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case keyCheckedMsg:
		if msg.err != nil {
			m.view = keyFormView
			m.errMsg = errorText(msg.err)
			m.keyForm.focus()
			return m, m.keyForm.blink()
		}
		m.issued = msg.issued
		m.view = pinIssuedView
		m.errMsg = ""
		m.infoMsg = i18n.Tf("login.balance_ok", map[string]any{"Balance": msg.issued.Balance})
		return m, nil
	}

	switch m.view {
	case keyFormView:
		return m.updateKeyForm(msg)
	case checkingView:
		// Input is ignored while the check is in flight; the submit
		// controls stay disabled until keyCheckedMsg arrives.
		return m, nil
	case pinIssuedView:
		return m.updatePinIssued(msg)
	case pinEntryView:
		return m.updatePinEntry(msg)
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var body string
	switch m.view {
	case keyFormView:
		body = m.keyForm.view(m.errMsg)
	case checkingView:
		body = i18n.T("login.checking")
	case pinIssuedView:
		body = m.pinIssuedView()
	case pinEntryView:
		body = m.pinEntry.view(m.errMsg)
	case unlockedView:
		body = successStyle.Render(i18n.T("login.unlocked"))
	}
	return docStyle.Render(titleStyle.Render(i18n.T("login.title")) + "\n" + body)
}

// errorText maps an auth error to its localized message.
func errorText(err error) string {
	var ae *model.AuthError
	if errors.As(err, &ae) {
		// Error kinds double as message IDs, e.g. "error.wrong_pin".
		return i18n.T("error." + string(ae.Kind))
	}
	return err.Error()
}

// Run drives the login flow to completion. It returns nil once the gate is
// authenticated, or when the user quits before unlocking.
func Run(g AuthGate) error {
	p := tea.NewProgram(NewModel(g), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
