package util

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	entropyLock sync.Mutex
	entropy     = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewULID returns a new monotonic ulid.ULID
func NewULID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}
