package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/r3labs/diff"
)

// memoryStore keeps users in memory, mostly useful for tests
// and short-lived command runs
type memoryStore struct {
	users     map[uuid.UUID]User
	usernames map[string]uuid.UUID
	emails    map[string]uuid.UUID

	sync.RWMutex
}

// NewMemoryStore returns an initialized user store
// that stores everything in memory
func NewMemoryStore() (Store, error) {
	s := &memoryStore{
		users:     make(map[uuid.UUID]User),
		usernames: make(map[string]uuid.UUID),
		emails:    make(map[string]uuid.UUID),
	}

	return s, nil
}

// detached returns a copy which shares no memory with the stored object
func detached(u User) User {
	if u.PasswordHash != nil {
		u.PasswordHash = append(u.PasswordHash[:0:0], u.PasswordHash...)
	}

	return u
}

// checkIndexes must be called under lock, ignores collisions with the user itself
func (s *memoryStore) checkIndexes(u User) error {
	if id, ok := s.usernames[u.Username]; ok && id != u.ID {
		return ErrUsernameTaken
	}

	if u.Email != "" {
		if id, ok := s.emails[u.Email]; ok && id != u.ID {
			return ErrEmailTaken
		}
	}

	return nil
}

func (s *memoryStore) CreateUser(ctx context.Context, u User) (_ User, err error) {
	if u.ID == uuid.Nil {
		return u, ErrZeroID
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return u, ErrUserExists
	}

	if err = s.checkIndexes(u); err != nil {
		return u, err
	}

	s.users[u.ID] = detached(u)
	s.usernames[u.Username] = u.ID
	if u.Email != "" {
		s.emails[u.Email] = u.ID
	}

	return u, nil
}

func (s *memoryStore) FetchUserByID(ctx context.Context, id uuid.UUID) (u User, err error) {
	s.RLock()
	defer s.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return u, ErrUserNotFound
	}

	return detached(u), nil
}

func (s *memoryStore) FetchUserByUsername(ctx context.Context, username string) (u User, err error) {
	s.RLock()
	id, ok := s.usernames[username]
	s.RUnlock()

	if !ok {
		return u, ErrUserNotFound
	}

	return s.FetchUserByID(ctx, id)
}

func (s *memoryStore) FetchUserByEmailAddr(ctx context.Context, addr string) (u User, err error) {
	if addr == "" {
		return u, ErrUserNotFound
	}

	s.RLock()
	id, ok := s.emails[addr]
	s.RUnlock()

	if !ok {
		return u, ErrUserNotFound
	}

	return s.FetchUserByID(ctx, id)
}

// UpdateUser replaces the stored user as a whole, the changelog
// is only checked for emptiness
func (s *memoryStore) UpdateUser(ctx context.Context, u User, changelog diff.Changelog) (_ User, err error) {
	if len(changelog) == 0 {
		return u, ErrNothingChanged
	}

	s.Lock()
	defer s.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return u, ErrUserNotFound
	}

	if err = s.checkIndexes(u); err != nil {
		return u, err
	}

	// reindexing
	delete(s.usernames, existing.Username)
	delete(s.emails, existing.Email)

	s.users[u.ID] = detached(u)
	s.usernames[u.Username] = u.ID
	if u.Email != "" {
		s.emails[u.Email] = u.ID
	}

	return u, nil
}

func (s *memoryStore) DeleteUserByID(ctx context.Context, id uuid.UUID) (err error) {
	if id == uuid.Nil {
		return ErrZeroID
	}

	s.Lock()
	defer s.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}

	delete(s.usernames, u.Username)
	delete(s.emails, u.Email)
	delete(s.users, id)

	return nil
}
