package auth

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password", 4)
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("HashPassword() returned the plaintext")
	}

	if err := ComparePassword(hash, "s3cret-password"); err != nil {
		t.Errorf("ComparePassword() unexpected error for correct password: %v", err)
	}
	if err := ComparePassword(hash, "wrong-password"); err == nil {
		t.Error("ComparePassword() expected error for wrong password")
	}
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	first, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	second, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	if first == second {
		t.Error("HashPassword() produced identical hashes for two calls")
	}
}
