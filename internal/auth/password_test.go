package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !VerifyPassword("hunter2hunter2", hash) {
		t.Error("correct password should verify")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Error("wrong password must not verify")
	}
	if VerifyPassword("hunter2hunter2", "not-a-bcrypt-hash") {
		t.Error("malformed hash must not verify")
	}
}

func TestDeriveKeyPurposesDiffer(t *testing.T) {
	secret := []byte("master-secret")

	sessionKey, err := DeriveSessionKey(secret)
	if err != nil {
		t.Fatalf("DeriveSessionKey: %v", err)
	}
	csrfKey, err := DeriveCSRFKey(secret)
	if err != nil {
		t.Fatalf("DeriveCSRFKey: %v", err)
	}

	if len(sessionKey) != 32 || len(csrfKey) != 32 {
		t.Fatalf("expected 32-byte keys, got %d and %d", len(sessionKey), len(csrfKey))
	}
	if string(sessionKey) == string(csrfKey) {
		t.Error("session and CSRF keys must differ")
	}

	again, err := DeriveSessionKey(secret)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(sessionKey) {
		t.Error("derivation must be deterministic")
	}
}

func TestDeriveKeyEmptySecret(t *testing.T) {
	if _, err := DeriveSessionKey(nil); err == nil {
		t.Fatal("empty master secret must be rejected")
	}
}
