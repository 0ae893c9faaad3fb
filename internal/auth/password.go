// Package auth holds credential storage policy and list-access tokens.
//
// Two modes, chosen once at startup with PASSWORD_MODE:
//
//	plain   the password is stored and compared verbatim, and login is a
//	        single SQL equality match on (Email, Password). This is what
//	        existing Registration_Table data looks like.
//	bcrypt  the password is stored as a bcrypt hash. Login fetches the rows
//	        for the email and checks each hash.
//
// The two are not interchangeable on the same data: a table filled in plain
// mode has no hashes to verify, and vice versa.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Mode selects how passwords are stored and checked.
type Mode string

const (
	ModePlain  Mode = "plain"
	ModeBcrypt Mode = "bcrypt"
)

// defaultCost is the bcrypt work factor; about 250ms per hash on current hardware.
const defaultCost = 12

// maxBcryptBytes is bcrypt's input limit. Longer input is silently truncated
// by the algorithm, so we reject it instead.
const maxBcryptBytes = 72

// ErrPasswordTooLong is returned by Prepare in bcrypt mode.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// PasswordService applies the configured storage policy. Tests build it
// with bcrypt.MinCost.
type PasswordService struct {
	mode Mode
	cost int
}

// NewPasswordService creates a PasswordService for mode, with the default cost.
func NewPasswordService(mode Mode) (*PasswordService, error) {
	switch mode {
	case ModePlain, ModeBcrypt:
		return &PasswordService{mode: mode, cost: defaultCost}, nil
	default:
		return nil, fmt.Errorf("auth: unknown password mode %q", mode)
	}
}

// NewPasswordServiceForTest creates a PasswordService with a custom bcrypt
// cost. Use bcrypt.MinCost (4) in tests. Do NOT use in production.
func NewPasswordServiceForTest(mode Mode, cost int) *PasswordService {
	return &PasswordService{mode: mode, cost: cost}
}

// Mode reports the configured storage policy.
func (p *PasswordService) Mode() Mode {
	return p.mode
}

// Prepare returns the value to store in the Password column.
func (p *PasswordService) Prepare(plaintext string) (string, error) {
	if p.mode == ModePlain {
		return plaintext, nil
	}
	return p.Hash(plaintext)
}

// Matches reports whether plaintext is the password behind stored.
func (p *PasswordService) Matches(stored, plaintext string) bool {
	if p.mode == ModePlain {
		return stored == plaintext
	}
	return p.Verify(stored, plaintext) == nil
}

// Hash returns the bcrypt encoding of plaintext ($2a$<cost>$<salt+hash>),
// ready to be stored as-is.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxBcryptBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify returns nil when plaintext matches the stored bcrypt hash and an
// error otherwise. A stored value that isn't a bcrypt hash at all, such as
// a plain-mode row, is an error too. The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
