// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package vault implements the on-disk credential store: a single JSON
// object at a fixed per-OS application-data path holding the api_key in
// clear text plus the PIN hash and salt.
//
// Plaintext storage of the key is a deliberate, documented property of the
// design: the PIN gates convenience, not a local attacker with filesystem
// read access. Callers outside this package depend on reading the key back
// in clear text.
//
// The store assumes a single local process; there is no file locking and
// concurrent multi-process access is undefined.
package vault // import "github.com/toeirei/pinvault/internal/vault"

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toeirei/pinvault/internal/model"
)

const (
	appDirName = "pinvault"
	dbFileName = "vault.json"

	keyAPIKey  = "api_key"
	keyPinHash = "pin_hash"
	keyPinSalt = "pin_salt"
)

// StorageError indicates the store could not be created or written.
// Read-side problems (missing or corrupt file) are not errors; they
// degrade to an empty record.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("vault storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store owns the credential file. Exactly one record per installation.
type Store struct {
	path string
}

// DefaultPath returns the per-OS location of the vault file, e.g.
// ~/.config/pinvault/vault.json on Linux or %AppData%\pinvault\vault.json
// on Windows.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

// New returns a Store bound to the given file path. An empty path selects
// DefaultPath; in that case path resolution errors surface on first use.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) resolvePath() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	return DefaultPath()
}

// Load reads the credential record. A missing or corrupt file, or a record
// missing any of the three fields, yields an empty record and no error:
// absence of valid credentials is a normal state, not a fault.
func (s *Store) Load() (model.CredentialRecord, error) {
	raw, err := s.readRaw()
	if err != nil {
		return model.CredentialRecord{}, err
	}

	rec := model.CredentialRecord{}
	if v, ok := raw[keyAPIKey]; ok {
		_ = json.Unmarshal(v, &rec.APIKey)
	}
	if v, ok := raw[keyPinHash]; ok {
		var b64 string
		if json.Unmarshal(v, &b64) == nil {
			rec.PinHash, _ = base64.StdEncoding.DecodeString(b64)
		}
	}
	if v, ok := raw[keyPinSalt]; ok {
		var b64 string
		if json.Unmarshal(v, &b64) == nil {
			rec.PinSalt, _ = base64.StdEncoding.DecodeString(b64)
		}
	}

	// No partial records: a key without hash+salt (or vice versa) counts as
	// no credentials configured.
	if !rec.IsComplete() {
		return model.CredentialRecord{}, nil
	}
	return rec, nil
}

// Save persists the full record using read-merge-write: JSON keys unrelated
// to the credential tuple survive, but api_key, pin_hash and pin_salt are
// always replaced together. Partial-field updates are not supported.
func (s *Store) Save(rec model.CredentialRecord) error {
	raw, err := s.readRaw()
	if err != nil {
		return err
	}

	apiKey, _ := json.Marshal(rec.APIKey)
	pinHash, _ := json.Marshal(base64.StdEncoding.EncodeToString(rec.PinHash))
	pinSalt, _ := json.Marshal(base64.StdEncoding.EncodeToString(rec.PinSalt))
	raw[keyAPIKey] = apiKey
	raw[keyPinHash] = pinHash
	raw[keyPinSalt] = pinSalt

	return s.writeRaw(raw)
}

// Clear resets the store to an empty record by overwriting the file with an
// empty JSON object. Idempotent.
func (s *Store) Clear() error {
	return s.writeRaw(map[string]json.RawMessage{})
}

// readRaw returns the file contents as a loose JSON object. Missing and
// unparseable files both map to an empty object.
func (s *Store) readRaw() (map[string]json.RawMessage, error) {
	path, err := s.resolvePath()
	if err != nil {
		return nil, &StorageError{Op: "resolve", Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]json.RawMessage{}, nil
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]json.RawMessage{}, nil
	}
	return raw, nil
}

func (s *Store) writeRaw(raw map[string]json.RawMessage) error {
	path, err := s.resolvePath()
	if err != nil {
		return &StorageError{Op: "resolve", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return &StorageError{Op: "mkdir", Err: err}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}
