// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures shared by the vault,
// the key validator and the auth gate.
package model // import "github.com/toeirei/pinvault/internal/model"

import "time"

// CredentialRecord is the full persisted credential tuple. The record is
// all-or-nothing: either all three fields are set, or the record counts as
// empty. An api_key without hash and salt means "no valid PIN configured".
type CredentialRecord struct {
	APIKey  string // The protected secret, stored in clear text by design.
	PinHash []byte // PBKDF2 digest of the PIN.
	PinSalt []byte // Random salt used for the derivation.
}

// IsComplete reports whether all three credential fields are present.
func (r CredentialRecord) IsComplete() bool {
	return r.APIKey != "" && len(r.PinHash) > 0 && len(r.PinSalt) > 0
}

// IsEmpty reports whether the record carries no credential at all.
func (r CredentialRecord) IsEmpty() bool {
	return r.APIKey == "" && len(r.PinHash) == 0 && len(r.PinSalt) == 0
}

// ErrorKind classifies the recoverable failures surfaced to the caller.
// None of these are fatal to the process; all are resolved by resubmission
// or by resetting the stored credentials.
type ErrorKind string

const (
	// ErrInvalidKey means the external service rejected the key (401/403).
	ErrInvalidKey ErrorKind = "invalid_key"
	// ErrRateLimited means the external service throttled the check (429).
	ErrRateLimited ErrorKind = "rate_limited"
	// ErrHTTP covers any other non-2xx reply from the validation endpoint.
	ErrHTTP ErrorKind = "http_error"
	// ErrNetwork covers transport failures: timeout, DNS, connection refused.
	ErrNetwork ErrorKind = "network_error"
	// ErrUnexpected covers unparseable or otherwise surprising replies.
	ErrUnexpected ErrorKind = "unexpected_error"
	// ErrInvalidFormat means the submitted PIN is not exactly four digits.
	ErrInvalidFormat ErrorKind = "invalid_format"
	// ErrWrongPin means the PIN did not verify against the stored digest.
	ErrWrongPin ErrorKind = "wrong_pin"
	// ErrStorage means the credential store could not be written.
	ErrStorage ErrorKind = "storage_error"
)

// AuthError is an ErrorKind with an optional human-readable detail message.
type AuthError struct {
	Kind    ErrorKind
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// NewAuthError builds an AuthError for the given kind and message.
func NewAuthError(kind ErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// ValidationResult is the outcome of one external key-validation round trip.
type ValidationResult struct {
	// OK is true when the key is active and the remaining balance is positive.
	OK bool
	// Balance is total_credits minus total_usage as reported by the endpoint.
	Balance float64
	// Err classifies the failure when OK is false for a non-balance reason.
	Err *AuthError
}

// AuthState enumerates the states of the auth gate state machine.
type AuthState int

const (
	// StateFirstRun means no stored key exists; awaiting key registration.
	StateFirstRun AuthState = iota
	// StateAwaitingKeyCheck means a validation call is in flight.
	StateAwaitingKeyCheck
	// StatePinIssued means a fresh PIN was generated and is being shown once.
	StatePinIssued
	// StatePinEntry means a stored key exists; awaiting the PIN.
	StatePinEntry
	// StateAuthenticated means the unlocked key is available to the caller.
	StateAuthenticated
)

// String returns a short lowercase name for the state, for logs and audit.
func (s AuthState) String() string {
	switch s {
	case StateFirstRun:
		return "first_run"
	case StateAwaitingKeyCheck:
		return "awaiting_key_check"
	case StatePinIssued:
		return "pin_issued"
	case StatePinEntry:
		return "pin_entry"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthEvent is one entry in the append-only authentication audit trail.
type AuthEvent struct {
	ID        int       // The primary key for the event.
	Timestamp time.Time // When the event was recorded.
	Action    string    // e.g. KEY_REGISTERED, UNLOCK_OK, UNLOCK_FAILED, RESET.
	Details   string    // Free-form detail, never containing secrets.
}

// Audit actions recorded by the auth gate.
const (
	AuditKeyRegistered = "KEY_REGISTERED"
	AuditKeyRejected   = "KEY_REJECTED"
	AuditUnlockOK      = "UNLOCK_OK"
	AuditUnlockFailed  = "UNLOCK_FAILED"
	AuditReset         = "RESET"
)
