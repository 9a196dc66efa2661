package user

import (
	"github.com/agubarev/accounts/pkg/security/password"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Manager is the user account factory, it creates standard and
// administrative users and looks after them afterwards
type Manager struct {
	store  Store
	policy password.Policy
	logger *zap.Logger
}

// NewManager initializes a new user manager
func NewManager(s Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	m := &Manager{
		store:  s,
		policy: password.DefaultPolicy(),
	}

	return m, nil
}

// Store returns the underlying store
func (m *Manager) Store() (Store, error) {
	if m == nil {
		return nil, ErrNilManager
	}

	if m.store == nil {
		return nil, ErrNilStore
	}

	return m.store, nil
}

// SetPasswordPolicy sets the policy every new password must satisfy
func (m *Manager) SetPasswordPolicy(p password.Policy) error {
	if p.EnforceStrength && (p.MinScore < 0 || p.MinScore > 4) {
		return errors.Errorf("password score must be within 0..4, got %d", p.MinScore)
	}

	m.policy = p

	return nil
}

// PasswordPolicy returns the current password policy
func (m *Manager) PasswordPolicy() password.Policy {
	return m.policy
}

// SetLogger assigns a logger for this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[user]")
	}

	m.logger = logger

	return nil
}

// Logger returns own logger or a no-op one if it isn't set
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	return m.logger
}
