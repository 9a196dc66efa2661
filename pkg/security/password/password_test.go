package password_test

import (
	"crypto/rand"
	"testing"

	"github.com/agubarev/accounts/pkg/security/password"
	"github.com/stretchr/testify/assert"
)

func TestNewPassword(t *testing.T) {
	a := assert.New(t)

	correctPassword := []byte("1j20nmdoansd-[afkcq0ofecimwq1")
	wrongPassword := []byte("wrongpassword")

	h, err := password.New(correctPassword, password.DefaultPolicy(), nil)
	a.NoError(err)
	a.True(h.IsUsable())
	a.True(h.Compare(correctPassword))
	a.False(h.Compare(wrongPassword))
}

func TestNewPasswordEmpty(t *testing.T) {
	a := assert.New(t)

	h, err := password.New(nil, password.DefaultPolicy(), nil)
	a.NoError(err)
	a.False(h.IsUsable())
	a.False(h.Compare(nil))
	a.False(h.Compare([]byte("")))
}

func TestNewPasswordPolicy(t *testing.T) {
	a := assert.New(t)

	strict := password.Policy{EnforceStrength: true, MinScore: password.DefaultMinScore}

	_, err := password.New([]byte("testpass123"), strict, nil)
	a.Error(err)

	// not enforced by default
	h, err := password.New([]byte("testpass123"), password.DefaultPolicy(), nil)
	a.NoError(err)
	a.True(h.Compare([]byte("testpass123")))
}

func TestEvaluatePassword(t *testing.T) {
	a := assert.New(t)

	err := password.EvaluateStrength([]byte("1234567"), password.DefaultMinScore, nil)
	a.Error(err)
	a.EqualError(password.ErrShortPassword, err.Error())

	// generating password which must be lengthier than max allowed
	pass := make([]byte, password.MaxLength+1)
	_, err = rand.Read(pass)
	a.NoError(err)

	err = password.EvaluateStrength(pass, password.DefaultMinScore, nil)
	a.Error(err)
	a.EqualError(password.ErrLongPassword, err.Error())

	err = password.EvaluateStrength([]byte("12345678"), password.DefaultMinScore, nil)
	a.Error(err)
	a.EqualError(password.ErrUnsafePassword, err.Error())

	err = password.EvaluateStrength([]byte("s@fer!@()*!p@ssw0rd*!jahaajk8!*@^%"), password.DefaultMinScore, nil)
	a.NoError(err)
}
