package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hashed, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hashed == "secret1" || strings.Contains(hashed, "secret1") {
		t.Fatal("hash must not contain the plaintext")
	}
	if !h.Verify(hashed, "secret1") {
		t.Error("expected matching password to verify")
	}
	if h.Verify(hashed, "secret2") {
		t.Error("expected wrong password to fail")
	}
	if h.Verify("not-a-bcrypt-hash", "secret1") {
		t.Error("expected malformed hash to fail")
	}
}

func TestHasher_SaltsEachHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("expected distinct hashes for the same password")
	}
}

func TestNewHasher_CostFallback(t *testing.T) {
	h := NewHasher(0)
	hashed, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		t.Fatalf("Cost() error = %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestHasher_RejectsOverlongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("expected error for password longer than 72 bytes")
	}
}
