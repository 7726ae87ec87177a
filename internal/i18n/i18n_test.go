// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"strings"
	"testing"
)

func TestT_English(t *testing.T) {
	Init("en")
	if got := T("error.wrong_pin"); got != "Wrong PIN" {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestT_UnknownIDFallsBack(t *testing.T) {
	Init("en")
	if got := T("does.not.exist"); got != "does.not.exist" {
		t.Fatalf("expected message ID fallback, got %q", got)
	}
}

func TestInit_SwitchesLanguage(t *testing.T) {
	Init("ru")
	defer Init("en")
	if got := T("error.wrong_pin"); got != "Неверный PIN" {
		t.Fatalf("expected russian translation, got %q", got)
	}
}

func TestTf_TemplateData(t *testing.T) {
	Init("en")
	got := Tf("login.pin_issued_body", map[string]any{"PIN": "4821"})
	if !strings.Contains(got, "4821") {
		t.Fatalf("expected PIN interpolated, got %q", got)
	}
}

func TestT_UninitializedDefaultsToEnglish(t *testing.T) {
	localizer = nil
	bundle = nil
	if got := T("error.wrong_pin"); got != "Wrong PIN" {
		t.Fatalf("expected english default, got %q", got)
	}
}
