package user

import (
	"context"

	"github.com/dgraph-io/badger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
)

// BadgerStore keeps users in an embedded badger database,
// secondary indexes are separate keys holding the user ID
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore initializes a badger-backed store
func NewBadgerStore(db *badger.DB) (Store, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	return &BadgerStore{db: db}, nil
}

func badgerIDKey(id uuid.UUID) []byte {
	return append([]byte("user:"), id[:]...)
}

func badgerUsernameKey(username string) []byte {
	return []byte("username:" + username)
}

func badgerEmailKey(addr string) []byte {
	return []byte("email:" + addr)
}

func (s *BadgerStore) getByKey(tx *badger.Txn, key []byte) (u User, err error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return u, ErrUserNotFound
		}

		return u, errors.Wrapf(err, "failed to get stored user by key %q", key)
	}

	err = item.Value(func(val []byte) error {
		u, err = unmarshalRecord(val)
		return err
	})

	return u, err
}

func (s *BadgerStore) getByIndex(tx *badger.Txn, indexKey []byte) (u User, err error) {
	item, err := tx.Get(indexKey)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return u, ErrUserNotFound
		}

		return u, errors.Wrapf(err, "failed to get index %q", indexKey)
	}

	var id uuid.UUID
	err = item.Value(func(val []byte) (xerr error) {
		id, xerr = uuid.FromBytes(val)
		return xerr
	})

	if err != nil {
		return u, errors.Wrapf(err, "corrupted index %q", indexKey)
	}

	return s.getByKey(tx, badgerIDKey(id))
}

// checkIndexes fails if username or email belong to someone else
func (s *BadgerStore) checkIndexes(tx *badger.Txn, u User) error {
	existing, err := s.getByIndex(tx, badgerUsernameKey(u.Username))
	if err == nil && existing.ID != u.ID {
		return ErrUsernameTaken
	}

	if err != nil && err != ErrUserNotFound {
		return err
	}

	if u.Email == "" {
		return nil
	}

	existing, err = s.getByIndex(tx, badgerEmailKey(u.Email))
	if err == nil && existing.ID != u.ID {
		return ErrEmailTaken
	}

	if err != nil && err != ErrUserNotFound {
		return err
	}

	return nil
}

func (s *BadgerStore) put(tx *badger.Txn, u User) error {
	data, err := marshalRecord(u)
	if err != nil {
		return errors.Wrap(err, "failed to marshal user record")
	}

	if err = tx.Set(badgerIDKey(u.ID), data); err != nil {
		return errors.Wrapf(err, "failed to store user %s", u.ID)
	}

	if err = tx.Set(badgerUsernameKey(u.Username), u.ID[:]); err != nil {
		return errors.Wrapf(err, "failed to store username index %s", u.Username)
	}

	if u.Email != "" {
		if err = tx.Set(badgerEmailKey(u.Email), u.ID[:]); err != nil {
			return errors.Wrapf(err, "failed to store email index %s", u.Email)
		}
	}

	return nil
}

func (s *BadgerStore) dropIndexes(tx *badger.Txn, u User) error {
	if err := tx.Delete(badgerUsernameKey(u.Username)); err != nil {
		return errors.Wrapf(err, "failed to delete username index %s", u.Username)
	}

	if u.Email != "" {
		if err := tx.Delete(badgerEmailKey(u.Email)); err != nil {
			return errors.Wrapf(err, "failed to delete email index %s", u.Email)
		}
	}

	return nil
}

func (s *BadgerStore) CreateUser(ctx context.Context, u User) (_ User, err error) {
	if u.ID == uuid.Nil {
		return u, ErrZeroID
	}

	err = s.db.Update(func(tx *badger.Txn) error {
		_, err := s.getByKey(tx, badgerIDKey(u.ID))
		if err == nil {
			return ErrUserExists
		}

		if err != ErrUserNotFound {
			return err
		}

		if err = s.checkIndexes(tx, u); err != nil {
			return err
		}

		return s.put(tx, u)
	})

	return u, err
}

func (s *BadgerStore) FetchUserByID(ctx context.Context, id uuid.UUID) (u User, err error) {
	err = s.db.View(func(tx *badger.Txn) error {
		u, err = s.getByKey(tx, badgerIDKey(id))
		return err
	})

	return u, err
}

func (s *BadgerStore) FetchUserByUsername(ctx context.Context, username string) (u User, err error) {
	err = s.db.View(func(tx *badger.Txn) error {
		u, err = s.getByIndex(tx, badgerUsernameKey(username))
		return err
	})

	return u, err
}

func (s *BadgerStore) FetchUserByEmailAddr(ctx context.Context, addr string) (u User, err error) {
	if addr == "" {
		return u, ErrUserNotFound
	}

	err = s.db.View(func(tx *badger.Txn) error {
		u, err = s.getByIndex(tx, badgerEmailKey(addr))
		return err
	})

	return u, err
}

// UpdateUser rewrites the whole record and reindexes it
func (s *BadgerStore) UpdateUser(ctx context.Context, u User, changelog diff.Changelog) (_ User, err error) {
	if len(changelog) == 0 {
		return u, ErrNothingChanged
	}

	err = s.db.Update(func(tx *badger.Txn) error {
		existing, err := s.getByKey(tx, badgerIDKey(u.ID))
		if err != nil {
			return err
		}

		if err = s.checkIndexes(tx, u); err != nil {
			return err
		}

		if err = s.dropIndexes(tx, existing); err != nil {
			return err
		}

		return s.put(tx, u)
	})

	return u, err
}

func (s *BadgerStore) DeleteUserByID(ctx context.Context, id uuid.UUID) (err error) {
	if id == uuid.Nil {
		return ErrZeroID
	}

	return s.db.Update(func(tx *badger.Txn) error {
		existing, err := s.getByKey(tx, badgerIDKey(id))
		if err != nil {
			return err
		}

		if err = s.dropIndexes(tx, existing); err != nil {
			return err
		}

		return tx.Delete(badgerIDKey(id))
	})
}
