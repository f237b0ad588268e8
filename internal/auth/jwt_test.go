package auth

import (
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	pair, err := MintTokens("abc123", "user@example.com", "secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("MintTokens() returned empty tokens")
	}

	for _, token := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := ParseClaims(token, "secret")
		if err != nil {
			t.Fatalf("ParseClaims() error = %v", err)
		}
		if claims.UserID != "abc123" {
			t.Errorf("ParseClaims() user id = %q, want abc123", claims.UserID)
		}
		if claims.Email != "user@example.com" {
			t.Errorf("ParseClaims() email = %q", claims.Email)
		}
	}
}

func TestParseClaims_WrongSecret(t *testing.T) {
	pair, err := MintTokens("abc123", "user@example.com", "secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	if _, err := ParseClaims(pair.AccessToken, "other-secret"); err == nil {
		t.Error("ParseClaims() should reject a token signed with a different secret")
	}
}

func TestParseClaims_Expired(t *testing.T) {
	pair, err := MintTokens("abc123", "user@example.com", "secret", -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	if _, err := ParseClaims(pair.AccessToken, "secret"); err == nil {
		t.Error("ParseClaims() should reject an expired token")
	}
}

func TestParseClaims_Garbage(t *testing.T) {
	if _, err := ParseClaims("not.a.token", "secret"); err == nil {
		t.Error("ParseClaims() should reject a malformed token")
	}
}
