package auth

import "testing"

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher()

	hash, err := h.Hash("password1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "password1" || hash == "" {
		t.Fatal("expected a bcrypt hash, not the plaintext")
	}

	if !h.Verify("password1", hash) {
		t.Fatal("expected correct password to verify")
	}
	if h.Verify("password2", hash) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestPasswordHasher_DistinctSalts(t *testing.T) {
	h := NewPasswordHasher()

	a, err := h.Hash("password1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	b, err := h.Hash("password1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if a == b {
		t.Fatal("expected salted hashes to differ")
	}
}
