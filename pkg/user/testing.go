package user

import (
	"context"
	"log"

	"github.com/agubarev/accounts/pkg/util"
)

// ManagerForTesting returns a fully initialized user manager for testing,
// a fresh memory store is used if none is given
func ManagerForTesting(s Store) (*Manager, context.Context, error) {
	if !util.IsTestMode() {
		log.Fatal("ManagerForTesting() can only be called during testing")
	}

	var err error

	if s == nil {
		if s, err = NewMemoryStore(); err != nil {
			return nil, nil, err
		}
	}

	m, err := NewManager(s)
	if err != nil {
		return nil, nil, err
	}

	logger, err := util.DefaultLogger(false, "")
	if err != nil {
		return nil, nil, err
	}

	if err = m.SetLogger(logger); err != nil {
		return nil, nil, err
	}

	return m, context.Background(), nil
}

// CreateTestUser creates a standard user, random username
// and email are generated for empty values
func CreateTestUser(ctx context.Context, m *Manager, username string, email string, pass []byte) (User, error) {
	if !util.IsTestMode() {
		log.Fatal("CreateTestUser() can only be called during testing")
	}

	if username == "" {
		username = "user" + util.NewULID().String()
	}

	if email == "" {
		email = username + "@example.com"
	}

	if pass == nil {
		pass = []byte("9dcni22lqadffa9h")
	}

	return m.CreateUser(ctx, NewUserObject{
		Username:  username,
		Email:     email,
		Password:  pass,
		Firstname: "John",
		Lastname:  "Smith",
	})
}
