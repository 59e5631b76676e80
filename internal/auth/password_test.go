package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "pw123") {
		t.Error("CheckPassword should accept the original password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword should reject a different password")
	}
	if CheckPassword("not-a-hash", "pw123") {
		t.Error("CheckPassword should reject a malformed hash")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ (salt)")
	}
}
