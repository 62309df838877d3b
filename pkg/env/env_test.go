package env

import "testing"

func TestGetPrefersPrefixedVariable(t *testing.T) {
	t.Setenv("GUDANG_LOG_FORMAT", "console")
	t.Setenv("LOG_FORMAT", "json")

	if got := Get("LOG_FORMAT", "json"); got != "console" {
		t.Fatalf("expected prefixed value, got %q", got)
	}
}

func TestGetFallsBackToBareThenDefault(t *testing.T) {
	t.Setenv("GUDANG_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", " console ")
	if got := Get("log_format", "json"); got != "console" {
		t.Fatalf("expected bare value, got %q", got)
	}

	t.Setenv("LOG_FORMAT", "")
	if got := Get("LOG_FORMAT", "json"); got != "json" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestLookupAcceptsPrefixedKey(t *testing.T) {
	t.Setenv("GUDANG_APP_ENV", "dev")
	if val, ok := Lookup("GUDANG_APP_ENV"); !ok || val != "dev" {
		t.Fatalf("expected dev, got %q %v", val, ok)
	}
	if _, ok := Lookup("  "); ok {
		t.Fatal("blank key should not resolve")
	}
}
