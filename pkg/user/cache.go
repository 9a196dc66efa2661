package user

import (
	"context"
	"time"

	"github.com/allegro/bigcache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
)

// cachedStore is a read-through cache in front of any other store,
// users are kept under their ID while username and email keys point to that ID
type cachedStore struct {
	backend Store
	cache   *bigcache.BigCache
}

// NewCachedStore wraps a store with a bigcache-backed cache
func NewCachedStore(backend Store, ttl time.Duration) (Store, error) {
	if backend == nil {
		return nil, ErrNilStore
	}

	config := bigcache.DefaultConfig(ttl)
	config.Shards = 64
	config.MaxEntriesInWindow = 10000

	cache, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize user cache")
	}

	s := &cachedStore{
		backend: backend,
		cache:   cache,
	}

	return s, nil
}

func idKey(id uuid.UUID) string     { return "id:" + id.String() }
func usernameKey(name string) string { return "username:" + name }
func emailKey(addr string) string    { return "email:" + addr }

func (s *cachedStore) put(u User) {
	data, err := marshalRecord(u)
	if err != nil {
		return
	}

	// cache is best-effort, a failed Set just means a miss later
	_ = s.cache.Set(idKey(u.ID), data)
	_ = s.cache.Set(usernameKey(u.Username), u.ID[:])
	if u.Email != "" {
		_ = s.cache.Set(emailKey(u.Email), u.ID[:])
	}
}

func (s *cachedStore) evict(u User) {
	_ = s.cache.Delete(idKey(u.ID))
	_ = s.cache.Delete(usernameKey(u.Username))
	if u.Email != "" {
		_ = s.cache.Delete(emailKey(u.Email))
	}
}

func (s *cachedStore) byID(id uuid.UUID) (u User, ok bool) {
	data, err := s.cache.Get(idKey(id))
	if err != nil {
		return u, false
	}

	u, err = unmarshalRecord(data)
	if err != nil {
		return u, false
	}

	return u, true
}

func (s *cachedStore) byIndex(key string) (u User, ok bool) {
	raw, err := s.cache.Get(key)
	if err != nil {
		return u, false
	}

	id, err := uuid.FromBytes(raw)
	if err != nil {
		return u, false
	}

	u, ok = s.byID(id)

	// index pointing to a different user means it's stale
	if ok && key != usernameKey(u.Username) && key != emailKey(u.Email) {
		return User{}, false
	}

	return u, ok
}

func (s *cachedStore) CreateUser(ctx context.Context, u User) (_ User, err error) {
	if u, err = s.backend.CreateUser(ctx, u); err != nil {
		return u, err
	}

	s.put(u)

	return u, nil
}

func (s *cachedStore) FetchUserByID(ctx context.Context, id uuid.UUID) (u User, err error) {
	if u, ok := s.byID(id); ok {
		return u, nil
	}

	if u, err = s.backend.FetchUserByID(ctx, id); err != nil {
		return u, err
	}

	s.put(u)

	return u, nil
}

func (s *cachedStore) FetchUserByUsername(ctx context.Context, username string) (u User, err error) {
	if u, ok := s.byIndex(usernameKey(username)); ok {
		return u, nil
	}

	if u, err = s.backend.FetchUserByUsername(ctx, username); err != nil {
		return u, err
	}

	s.put(u)

	return u, nil
}

func (s *cachedStore) FetchUserByEmailAddr(ctx context.Context, addr string) (u User, err error) {
	if addr == "" {
		return u, ErrUserNotFound
	}

	if u, ok := s.byIndex(emailKey(addr)); ok {
		return u, nil
	}

	if u, err = s.backend.FetchUserByEmailAddr(ctx, addr); err != nil {
		return u, err
	}

	s.put(u)

	return u, nil
}

func (s *cachedStore) UpdateUser(ctx context.Context, u User, changelog diff.Changelog) (_ User, err error) {
	// evicting whatever is cached under the old username and email
	if previous, ok := s.byID(u.ID); ok {
		s.evict(previous)
	}

	if u, err = s.backend.UpdateUser(ctx, u, changelog); err != nil {
		return u, err
	}

	s.put(u)

	return u, nil
}

func (s *cachedStore) DeleteUserByID(ctx context.Context, id uuid.UUID) (err error) {
	if previous, ok := s.byID(id); ok {
		s.evict(previous)
	}

	return s.backend.DeleteUserByID(ctx, id)
}
