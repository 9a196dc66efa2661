package user

import (
	"context"
	"time"

	"github.com/agubarev/accounts/pkg/security/password"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	"go.uber.org/zap"
)

// essential fields which may be changed by UpdateUser
var changeableFields = map[string]bool{
	"Username":    true,
	"Email":       true,
	"Firstname":   true,
	"Lastname":    true,
	"IsActive":    true,
	"IsStaff":     true,
	"IsSuperuser": true,
}

// CreateUser creates a new standard user: active, not staff, not superuser
func (m *Manager) CreateUser(ctx context.Context, obj NewUserObject, opts ...Option) (u User, err error) {
	f := flags{
		isActive:    true,
		isStaff:     false,
		isSuperuser: false,
	}

	for _, opt := range opts {
		opt(&f)
	}

	return m.createUser(ctx, obj, f)
}

// CreateSuperuser creates a new administrative user: active, staff and superuser
func (m *Manager) CreateSuperuser(ctx context.Context, obj NewUserObject, opts ...Option) (u User, err error) {
	f := flags{
		isActive:    true,
		isStaff:     true,
		isSuperuser: true,
	}

	for _, opt := range opts {
		opt(&f)
	}

	if !f.isStaff {
		return u, ErrSuperuserMustBeStaff
	}

	if !f.isSuperuser {
		return u, ErrSuperuserMustBeSuperuser
	}

	return m.createUser(ctx, obj, f)
}

func (m *Manager) createUser(ctx context.Context, obj NewUserObject, f flags) (u User, err error) {
	store, err := m.Store()
	if err != nil {
		return u, err
	}

	//---------------------------------------------------------------------------
	// basic cleaning and validation
	//---------------------------------------------------------------------------
	obj.Username = NormalizeUsername(obj.Username)
	obj.Email = NormalizeEmail(obj.Email)

	u = User{
		ID: uuid.New(),
		Essential: Essential{
			Username:    obj.Username,
			Email:       obj.Email,
			Firstname:   obj.Firstname,
			Lastname:    obj.Lastname,
			IsActive:    f.isActive,
			IsStaff:     f.isStaff,
			IsSuperuser: f.isSuperuser,
		},
	}

	if err = u.Validate(); err != nil {
		return User{}, err
	}

	if err = m.CheckAvailability(ctx, u.Username, u.Email); err != nil {
		return User{}, err
	}

	//---------------------------------------------------------------------------
	// hashing password, an empty one makes the user's password unusable
	//---------------------------------------------------------------------------
	u.PasswordHash, err = password.New(obj.Password, m.policy, userdata(u))
	if err != nil {
		return User{}, errors.Wrap(err, "failed to initialize new password")
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Checksum = u.calculateChecksum()

	u, err = store.CreateUser(ctx, u)
	if err != nil {
		return User{}, errors.Wrap(err, "failed to store new user")
	}

	m.Logger().Debug(
		"created new user",
		zap.String("id", u.ID.String()),
		zap.String("username", u.Username),
		zap.String("email", u.Email),
		zap.Bool("is_staff", u.IsStaff),
		zap.Bool("is_superuser", u.IsSuperuser),
	)

	return u, nil
}

// userdata returns strings a password must not resemble
func userdata(u User) []string {
	return []string{u.Username, u.Email, u.Firstname, u.Lastname}
}

// UserByID returns a user if found by ID
func (m *Manager) UserByID(ctx context.Context, id uuid.UUID) (u User, err error) {
	if id == uuid.Nil {
		return u, ErrUserNotFound
	}

	u, err = m.store.FetchUserByID(ctx, id)
	if err != nil {
		return u, errors.Wrapf(err, "failed to obtain user by id: %s", id)
	}

	return u, nil
}

// UserByUsername returns a user if found by username
func (m *Manager) UserByUsername(ctx context.Context, username string) (u User, err error) {
	username = NormalizeUsername(username)
	if username == "" {
		return u, ErrUserNotFound
	}

	u, err = m.store.FetchUserByUsername(ctx, username)
	if err != nil {
		return u, errors.Wrapf(err, "failed to obtain user by username: %s", username)
	}

	return u, nil
}

// UserByEmailAddr returns a user if found by email address
func (m *Manager) UserByEmailAddr(ctx context.Context, addr string) (u User, err error) {
	addr = NormalizeEmail(addr)
	if addr == "" {
		return u, ErrUserNotFound
	}

	u, err = m.store.FetchUserByEmailAddr(ctx, addr)
	if err != nil {
		return u, errors.Wrapf(err, "failed to obtain user by email: %s", addr)
	}

	return u, nil
}

// UpdateUser updates an existing user, only the essential part
// of what fn returns is taken into account
func (m *Manager) UpdateUser(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, u User) (User, error)) (u User, changelog diff.Changelog, err error) {
	store, err := m.Store()
	if err != nil {
		return u, nil, err
	}

	// obtaining existing user
	existing, err := m.UserByID(ctx, id)
	if err != nil {
		return u, nil, errors.Wrap(err, "failed to obtain existing user")
	}

	// the function receives its own copy
	updated, err := fn(ctx, detached(existing))
	if err != nil {
		return existing, nil, errors.Wrap(err, "failed to initialize updated user")
	}

	u = existing
	u.Essential = updated.Essential
	u.Username = NormalizeUsername(u.Username)
	u.Email = NormalizeEmail(u.Email)

	if err = u.Validate(); err != nil {
		return existing, nil, err
	}

	changelog, err = util.ProtectedChangelog(changeableFields, existing.Essential, u.Essential)
	if err != nil {
		return existing, nil, err
	}

	if len(changelog) == 0 {
		return existing, nil, ErrNothingChanged
	}

	// uniqueness only matters if the value has changed
	if u.Username != existing.Username {
		if err = m.CheckAvailability(ctx, u.Username, ""); err != nil {
			return existing, nil, err
		}
	}

	if u.Email != existing.Email {
		if err = m.CheckAvailability(ctx, "", u.Email); err != nil {
			return existing, nil, err
		}
	}

	u.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	u.Checksum = u.calculateChecksum()

	if u, err = store.UpdateUser(ctx, u, changelog); err != nil {
		return existing, nil, errors.Wrap(err, "failed to update user")
	}

	m.Logger().Debug(
		"updated user",
		zap.String("id", u.ID.String()),
		zap.String("username", u.Username),
		zap.Int("changes", len(changelog)),
	)

	return u, changelog, nil
}

// DeleteUserByID deletes a user
func (m *Manager) DeleteUserByID(ctx context.Context, id uuid.UUID) (err error) {
	store, err := m.Store()
	if err != nil {
		return err
	}

	if err = store.DeleteUserByID(ctx, id); err != nil {
		return errors.Wrapf(err, "failed to delete user: %s", id)
	}

	m.Logger().Debug("deleted user", zap.String("id", id.String()))

	return nil
}

// CheckAvailability tests whether someone with such username or email is already registered,
// empty values are not checked
func (m *Manager) CheckAvailability(ctx context.Context, username string, email string) error {
	store, err := m.Store()
	if err != nil {
		return err
	}

	if username = NormalizeUsername(username); username != "" {
		_, err = store.FetchUserByUsername(ctx, username)
		if err == nil {
			return ErrUsernameTaken
		}

		if errors.Cause(err) != ErrUserNotFound {
			return err
		}
	}

	if email = NormalizeEmail(email); email != "" {
		_, err = store.FetchUserByEmailAddr(ctx, email)
		if err == nil {
			return ErrEmailTaken
		}

		if errors.Cause(err) != ErrUserNotFound {
			return err
		}
	}

	return nil
}

// SetPassword hashes and sets a new password for the user,
// an empty password makes it unusable
func (m *Manager) SetPassword(ctx context.Context, id uuid.UUID, rawpass []byte) (err error) {
	store, err := m.Store()
	if err != nil {
		return err
	}

	u, err := m.UserByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to set user password")
	}

	if u.PasswordHash, err = password.New(rawpass, m.policy, userdata(u)); err != nil {
		return errors.Wrap(err, "failed to set user password")
	}

	u.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	changelog := diff.Changelog{{Type: diff.UPDATE, Path: []string{"PasswordHash"}}}
	if _, err = store.UpdateUser(ctx, u, changelog); err != nil {
		return errors.Wrap(err, "failed to set user password")
	}

	m.Logger().Debug("password changed", zap.String("id", u.ID.String()))

	return nil
}

// CheckPassword tests whether a raw password matches the one the user has
func (m *Manager) CheckPassword(ctx context.Context, id uuid.UUID, rawpass []byte) (bool, error) {
	u, err := m.UserByID(ctx, id)
	if err != nil {
		return false, err
	}

	return u.PasswordHash.Compare(rawpass), nil
}
