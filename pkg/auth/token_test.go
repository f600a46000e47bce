package auth

import (
	"strings"
	"testing"
)

func TestTokenGenerator_GenerateToken(t *testing.T) {
	tg := NewTokenGenerator()

	token, tokenHash, err := tg.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Check token format
	if !strings.HasPrefix(token, TokenPrefix) {
		t.Errorf("Token should start with %q, got %q", TokenPrefix, token)
	}

	// Check hash length (SHA256 = 64 hex chars)
	if len(tokenHash) != 64 {
		t.Errorf("TokenHash length = %d, want 64", len(tokenHash))
	}

	// Token should be long enough
	if len(token) < len(TokenPrefix)+8 {
		t.Errorf("Token too short: %d chars", len(token))
	}
}

func TestTokenGenerator_GenerateToken_Uniqueness(t *testing.T) {
	tg := NewTokenGenerator()

	tokens := make(map[string]bool)
	hashes := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, tokenHash, err := tg.GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}

		if tokens[token] {
			t.Errorf("Duplicate token generated: %s", token)
		}
		if hashes[tokenHash] {
			t.Errorf("Duplicate token hash generated: %s", tokenHash)
		}

		tokens[token] = true
		hashes[tokenHash] = true
	}
}

func TestTokenGenerator_HashToken(t *testing.T) {
	tg := NewTokenGenerator()

	token, tokenHash, err := tg.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Hashing the plaintext must reproduce the stored hash
	if got := tg.HashToken(token); got != tokenHash {
		t.Errorf("HashToken() = %s, want %s", got, tokenHash)
	}

	// Same input always produces same hash
	if tg.HashToken("pdfgpt_abc") != tg.HashToken("pdfgpt_abc") {
		t.Error("HashToken() is not deterministic")
	}

	// Different inputs produce different hashes
	if tg.HashToken("pdfgpt_abc") == tg.HashToken("pdfgpt_abd") {
		t.Error("HashToken() collision on different inputs")
	}
}

func TestTokenGenerator_ValidateTokenFormat(t *testing.T) {
	tg := NewTokenGenerator()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"generated token", "", false}, // filled below
		{"missing prefix", "abc123", true},
		{"prefix only", "pdfgpt_", true},
		{"wrong prefix", "sess_abc123", true},
		{"invalid base64", "pdfgpt_!!!not-base64!!!", true},
		{"empty", "", true},
	}

	generated, _, err := tg.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	tests[0].token = generated

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tg.ValidateTokenFormat(tt.token)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTokenFormat(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
		})
	}
}
