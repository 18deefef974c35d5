package config

import (
	"testing"
)

func TestDefaultProvider(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DefaultProvider != "anthropic" {
		t.Errorf("Default provider = %q, want %q", cfg.DefaultProvider, "anthropic")
	}
}

func TestDefaultWordBounds(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Generation.MinWords != 550 {
		t.Errorf("MinWords = %d, want 550", cfg.Generation.MinWords)
	}
	if cfg.Generation.MaxWords != 600 {
		t.Errorf("MaxWords = %d, want 600", cfg.Generation.MaxWords)
	}
	if cfg.Generation.TargetWords != 570 {
		t.Errorf("TargetWords = %d, want 570", cfg.Generation.TargetWords)
	}
}

func TestValidateNormalizesRanges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generation.MaxAttempts = 0
	cfg.Generation.SimilarityThreshold = 1.5
	cfg.Usage.MaxPosts = -2

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Generation.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Generation.MaxAttempts)
	}
	if cfg.Generation.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %v, want 0.9", cfg.Generation.SimilarityThreshold)
	}
	if cfg.Usage.MaxPosts != 10 {
		t.Errorf("Usage.MaxPosts = %d, want 10", cfg.Usage.MaxPosts)
	}
}

func TestValidateRejectsUnknownDefaultProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultProvider = "nope"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown default_provider, got nil")
	}
}

func TestValidateRejectsInvalidProviderType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers["weird"] = ProviderConfig{Type: "smoke-signals"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid provider type, got nil")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("BLOGSMITH_TEST_KEY", "sk-test-123")

	got := expandEnv("$BLOGSMITH_TEST_KEY")
	if got != "sk-test-123" {
		t.Errorf("expandEnv = %q, want %q", got, "sk-test-123")
	}

	// Unset variables are left as-is
	got = expandEnv("$BLOGSMITH_DOES_NOT_EXIST_XYZ")
	if got != "$BLOGSMITH_DOES_NOT_EXIST_XYZ" {
		t.Errorf("expandEnv kept = %q", got)
	}
}
