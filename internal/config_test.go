package internal

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Suggest.Count != 2 {
		t.Errorf("suggest count = %d, want 2", cfg.Suggest.Count)
	}
	if cfg.Thumbnails.Enabled {
		t.Error("thumbnails should be off by default")
	}
	if cfg.Oracle.LanguageTag() != language.Japanese {
		t.Errorf("language = %v", cfg.Oracle.LanguageTag())
	}
}

func TestOracleConfig_InvalidLanguage(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Oracle.Language = "not a tag!"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid language should fail validation")
	}
}

func TestOracleConfig_NegativeTimeout(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Oracle.Timeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative timeout should fail validation")
	}
}

func TestSuggestConfig_Bounds(t *testing.T) {
	for _, n := range []int{0, -1, 11} {
		cfg := SuggestConfig{Count: n}
		if err := cfg.Validate(); err == nil {
			t.Errorf("count %d should fail validation", n)
		}
	}
}

func TestStorageConfig_Required(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.RecipesDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty recipes dir should fail validation")
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}
