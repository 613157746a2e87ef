package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !IsHashed(hash) {
		t.Errorf("expected bcrypt prefix, got %q", hash)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
	if IsHashed("plaintext") {
		t.Error("plaintext must not look hashed")
	}
}
