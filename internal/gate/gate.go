// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package gate implements the authentication state machine that fronts the
// vault. The flow splits "key is economically valid" (checked once against
// the provider at registration) from "local possession of the PIN" (checked
// offline on every later launch), so app starts never pay for a network
// round trip.
package gate // import "github.com/toeirei/pinvault/internal/gate"

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"sync"

	"github.com/toeirei/pinvault/internal/logging"
	"github.com/toeirei/pinvault/internal/model"
	"github.com/toeirei/pinvault/internal/pin"
	"github.com/toeirei/pinvault/internal/state"
)

// CredentialStore is the persistence surface the gate depends on.
type CredentialStore interface {
	Load() (model.CredentialRecord, error)
	Save(model.CredentialRecord) error
	Clear() error
}

// Validator performs the external key-validation round trip.
type Validator interface {
	Check(ctx context.Context, apiKey string) model.ValidationResult
}

// Auditor records auth events. May be nil; auditing is best-effort and
// never blocks or fails the login flow.
type Auditor interface {
	Add(action, details string) error
}

// Options carries the optional collaborators registered at construction.
// OnUnlock is the single, statically declared host callback invoked with
// the unlocked key after successful verification; there is no dynamic
// entry-point discovery.
type Options struct {
	Audit    Auditor
	OnUnlock func(unlockedKey string)
}

// Issued is the one-time result of a successful key registration. The
// plaintext PIN is returned exactly once and is never re-derivable.
type Issued struct {
	PIN     string
	Balance float64
}

var pinFormat = regexp.MustCompile(`^[0-9]{4}$`)

// Gate owns the authentication state for one process. All methods are safe
// for concurrent use, though the design expects a single logical session:
// while a validation call is running, further submissions are rejected
// rather than queued.
type Gate struct {
	store     CredentialStore
	validator Validator
	audit     Auditor
	onUnlock  func(string)

	mu       sync.Mutex
	st       model.AuthState
	record   model.CredentialRecord
	unlocked string
	checking bool
}

// New builds a Gate over the given store and validator. The initial state
// is PinEntry when a complete credential record exists, FirstRun otherwise.
func New(store CredentialStore, validator Validator, opts Options) *Gate {
	g := &Gate{
		store:     store,
		validator: validator,
		audit:     opts.Audit,
		onUnlock:  opts.OnUnlock,
		st:        model.StateFirstRun,
	}

	rec, err := store.Load()
	if err != nil {
		// Load only fails on path resolution; treat as no credentials.
		logging.Warnf("could not load credential record: %v", err)
	}
	if rec.IsComplete() {
		g.record = rec
		g.st = model.StatePinEntry
	}
	return g
}

// State returns the current machine state.
func (g *Gate) State() model.AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st
}

// Mode reports the entry mode a fresh UI should render: StatePinEntry when
// stored credentials exist, StateFirstRun otherwise.
func (g *Gate) Mode() model.AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.record.IsComplete() {
		return model.StatePinEntry
	}
	return model.StateFirstRun
}

// UnlockedKey returns the secret key after successful authentication, or
// the empty string while locked.
func (g *Gate) UnlockedKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

// SubmitAPIKey registers a candidate key on first run. The key is checked
// against the external endpoint; on success a fresh 4-digit PIN is
// generated, the record is persisted, and the PIN is returned to the
// caller for its one-time display. On any failure the state is unchanged
// and the caller may resubmit.
func (g *Gate) SubmitAPIKey(ctx context.Context, apiKey string) (*Issued, error) {
	g.mu.Lock()
	if g.st != model.StateFirstRun {
		defer g.mu.Unlock()
		return nil, model.NewAuthError(model.ErrUnexpected,
			fmt.Sprintf("key registration not available in state %s", g.st))
	}
	if g.checking {
		defer g.mu.Unlock()
		return nil, model.NewAuthError(model.ErrUnexpected, "a key check is already in flight")
	}
	g.checking = true
	g.st = model.StateAwaitingKeyCheck
	g.mu.Unlock()

	// The network call runs without holding the lock; the checking flag
	// keeps concurrent submissions out.
	res := g.validator.Check(ctx, apiKey)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.checking = false

	if !res.OK {
		g.st = model.StateFirstRun
		err := res.Err
		if err == nil {
			// Key is live but the balance is exhausted.
			err = model.NewAuthError(model.ErrInvalidKey,
				fmt.Sprintf("balance %.2f is not positive", res.Balance))
		}
		g.auditLog(model.AuditKeyRejected, string(err.Kind))
		return nil, err
	}

	pinCode, err := generatePin()
	if err != nil {
		g.st = model.StateFirstRun
		return nil, model.NewAuthError(model.ErrUnexpected, err.Error())
	}
	salt, err := pin.GenerateSalt()
	if err != nil {
		g.st = model.StateFirstRun
		return nil, model.NewAuthError(model.ErrUnexpected, err.Error())
	}

	rec := model.CredentialRecord{
		APIKey:  apiKey,
		PinHash: pin.Derive(pinCode, salt),
		PinSalt: salt,
	}
	if err := g.store.Save(rec); err != nil {
		g.st = model.StateFirstRun
		return nil, model.NewAuthError(model.ErrStorage, err.Error())
	}

	g.record = rec
	g.st = model.StatePinIssued
	g.auditLog(model.AuditKeyRegistered, fmt.Sprintf("balance %.2f", res.Balance))
	return &Issued{PIN: pinCode, Balance: res.Balance}, nil
}

// ConfirmPinIssued acknowledges the one-time PIN display and moves on to
// PIN entry. No-op outside PinIssued.
func (g *Gate) ConfirmPinIssued() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.st == model.StatePinIssued {
		g.st = model.StatePinEntry
	}
}

// SubmitPin verifies a candidate PIN and, on success, unlocks the vault and
// returns the secret key. Format violations are rejected locally without
// touching the store or the stored digest.
func (g *Gate) SubmitPin(pinCode string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !pinFormat.MatchString(pinCode) {
		return "", model.NewAuthError(model.ErrInvalidFormat, "PIN must be exactly 4 digits")
	}
	if g.st != model.StatePinEntry || !g.record.IsComplete() {
		return "", model.NewAuthError(model.ErrUnexpected, "no credentials configured")
	}

	if !pin.Verify(pinCode, g.record.PinSalt, g.record.PinHash) {
		g.auditLog(model.AuditUnlockFailed, "wrong pin")
		return "", model.NewAuthError(model.ErrWrongPin, "")
	}

	g.st = model.StateAuthenticated
	g.unlocked = g.record.APIKey
	state.SessionKey.Set([]byte(g.unlocked))
	g.auditLog(model.AuditUnlockOK, "")

	if g.onUnlock != nil {
		g.onUnlock(g.unlocked)
	}
	return g.unlocked, nil
}

// Reset wipes the stored credentials and returns the machine to FirstRun.
// Idempotent; safe to call from any state.
func (g *Gate) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Clear(); err != nil {
		return model.NewAuthError(model.ErrStorage, err.Error())
	}
	g.record = model.CredentialRecord{}
	g.unlocked = ""
	g.st = model.StateFirstRun
	state.SessionKey.Clear()
	g.auditLog(model.AuditReset, "")
	return nil
}

// auditLog records an event if an auditor is configured. Failures are
// logged and swallowed; auth must work with a broken audit backend.
// Callers hold g.mu.
func (g *Gate) auditLog(action, details string) {
	if g.audit == nil {
		return
	}
	if err := g.audit.Add(action, details); err != nil {
		logging.Warnf("audit write failed: %v", err)
	}
}

// generatePin draws a uniform random PIN from 0000 to 9999.
func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
