package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// newTestPasswordService returns a bcrypt-mode PasswordService with cost 4,
// the minimum bcrypt allows, so each hash takes milliseconds.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(ModeBcrypt, bcrypt.MinCost)
}

// =========================================================================
// MODE TESTS
// =========================================================================

func TestNewPasswordService_Modes(t *testing.T) {
	for _, mode := range []Mode{ModePlain, ModeBcrypt} {
		ps, err := NewPasswordService(mode)
		if err != nil {
			t.Fatalf("NewPasswordService(%q) error = %v", mode, err)
		}
		if ps.Mode() != mode {
			t.Errorf("Mode() = %q, want %q", ps.Mode(), mode)
		}
	}

	if _, err := NewPasswordService("md5"); err == nil {
		t.Fatal("NewPasswordService() should reject unknown modes")
	}
}

func TestPlainMode_StoresVerbatim(t *testing.T) {
	ps := NewPasswordServiceForTest(ModePlain, bcrypt.MinCost)

	stored, err := ps.Prepare("p1")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if stored != "p1" {
		t.Errorf("Prepare() = %q, want verbatim %q", stored, "p1")
	}

	if !ps.Matches("p1", "p1") {
		t.Error("Matches() should accept identical values")
	}
	if ps.Matches("p1", "P1") {
		t.Error("Matches() must be case-sensitive")
	}
}

func TestBcryptMode_PrepareHashes(t *testing.T) {
	ps := newTestPasswordService()

	stored, err := ps.Prepare("p1")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if stored == "p1" || !strings.HasPrefix(stored, "$2") {
		t.Errorf("Prepare() = %q, want a bcrypt hash", stored)
	}

	if !ps.Matches(stored, "p1") {
		t.Error("Matches() should accept the original password")
	}
	if ps.Matches(stored, "wrong") {
		t.Error("Matches() should reject a wrong password")
	}
	if ps.Matches("p1", "p1") {
		t.Error("Matches() must not accept a plain value as a hash")
	}
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt hashes always start with $2a$ or $2b$
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash(strings.Repeat("a", 73))
	if err != ErrPasswordTooLong {
		t.Fatalf("Hash() error = %v, want ErrPasswordTooLong", err)
	}
}

func TestHash_AcceptsPasswordExactly72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash() should accept a 72-byte password, got error: %v", err)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, _ := ps.Hash("the-real-password")

	if err := ps.Verify(hash, "the-wrong-password"); err == nil {
		t.Fatal("Verify() should return an error for a wrong password")
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService()

	if err := ps.Verify("not-a-valid-bcrypt-hash", "password"); err == nil {
		t.Fatal("Verify() should return an error for a garbage hash")
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "hello123"},
		{"special characters", "p@$$w0rd!#%"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := ps.Hash(tc.password)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", tc.password, err)
			}

			if err := ps.Verify(hash, tc.password); err != nil {
				t.Errorf("Verify() failed for %q: %v", tc.password, err)
			}
		})
	}
}
