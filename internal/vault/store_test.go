// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/toeirei/pinvault/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "sub", "vault.json"))
}

func completeRecord() model.CredentialRecord {
	return model.CredentialRecord{
		APIKey:  "sk-test",
		PinHash: []byte{0x01, 0x02, 0x03, 0x04},
		PinSalt: []byte{0xAA, 0xBB, 0xCC, 0xDD},
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file returned error: %v", err)
	}
	if !rec.IsEmpty() {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestLoad_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}
	rec, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load on corrupt file returned error: %v", err)
	}
	if !rec.IsEmpty() {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := completeRecord()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.APIKey != want.APIKey {
		t.Fatalf("api_key mismatch: got %q want %q", got.APIKey, want.APIKey)
	}
	if string(got.PinHash) != string(want.PinHash) {
		t.Fatalf("pin_hash did not round-trip")
	}
	if string(got.PinSalt) != string(want.PinSalt) {
		t.Fatalf("pin_salt did not round-trip")
	}
}

func TestSave_PreservesUnrelatedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	seed := map[string]any{"theme": "dark", "window": map[string]any{"w": 800}}
	data, _ := json.Marshal(seed)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	s := New(path)
	if err := s.Save(completeRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file back: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatalf("stored file is not valid JSON: %v", err)
	}
	if _, ok := raw["theme"]; !ok {
		t.Fatalf("unrelated key 'theme' lost on save")
	}
	if _, ok := raw["window"]; !ok {
		t.Fatalf("unrelated key 'window' lost on save")
	}
	for _, k := range []string{"api_key", "pin_hash", "pin_salt"} {
		if _, ok := raw[k]; !ok {
			t.Fatalf("credential key %q missing after save", k)
		}
	}
}

func TestLoad_PartialRecordIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	data, _ := json.Marshal(map[string]string{"api_key": "sk-orphan"})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	rec, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !rec.IsEmpty() {
		t.Fatalf("api_key without hash/salt should load as empty, got %+v", rec)
	}
}

func TestClear_ThenLoadIsEmpty(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(completeRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	rec, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !rec.IsEmpty() {
		t.Fatalf("expected empty record after Clear, got %+v", rec)
	}
	// Idempotent.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestSave_UnwritableDirIsStorageError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("mode bits are not enforced for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	s := New(filepath.Join(dir, "nested", "vault.json"))
	err := s.Save(completeRecord())
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}
