package password

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// constant rules
const (
	MinLength       = 8
	MaxLength       = 64
	DefaultMinScore = 3
)

// Policy describes what a raw password must satisfy before being hashed
type Policy struct {
	EnforceStrength bool
	MinScore        int
}

// DefaultPolicy only hashes, strength is not evaluated
func DefaultPolicy() Policy {
	return Policy{
		EnforceStrength: false,
		MinScore:        DefaultMinScore,
	}
}

// Hash is a bcrypt hash of a raw password, empty hash means unusable
type Hash []byte

// IsUsable reports whether the hash can ever match a password
func (h Hash) IsUsable() bool {
	return len(h) > 0
}

// Compare tests whether a given plaintext password matches the hash
func (h Hash) Compare(rawpass []byte) bool {
	if !h.IsUsable() {
		return false
	}

	return bcrypt.CompareHashAndPassword(h, rawpass) == nil
}

// EvaluateStrength evaluates password's strength by checking its length
// and the zxcvbn score, userdata is a list of strings the password must not resemble
func EvaluateStrength(rawpass []byte, minScore int, userdata []string) error {
	pl := len(rawpass)
	if pl < MinLength {
		return ErrShortPassword
	}

	if pl > MaxLength {
		return ErrLongPassword
	}

	result := zxcvbn.PasswordStrength(string(rawpass), userdata)
	if result.Score < minScore {
		return ErrUnsafePassword
	}

	return nil
}

// New hashes a raw password according to the policy
// NOTE: an empty raw password yields an unusable (empty) hash and no error
func New(rawpass []byte, p Policy, userdata []string) (h Hash, err error) {
	if len(rawpass) == 0 {
		return nil, nil
	}

	if p.EnforceStrength {
		if err = EvaluateStrength(rawpass, p.MinScore, userdata); err != nil {
			return nil, err
		}
	}

	// bcrypt ignores everything past 72 bytes
	if len(rawpass) > 72 {
		return nil, ErrLongPassword
	}

	h, err = bcrypt.GenerateFromPassword(rawpass, bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	return h, nil
}
