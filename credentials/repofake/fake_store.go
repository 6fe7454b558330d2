package fakecredentials

import (
	"context"
	"sync"

	"github.com/jrsteele09/signals-client/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credentials.Store that counts calls.
type FakeStore struct {
	token    string
	hasToken bool
	lock     sync.Mutex

	WriteErr error
	Reads    int
	Writes   int
	Clears   int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Seed stores token without counting a write.
func (s *FakeStore) Seed(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token, s.hasToken = token, true
}

func (s *FakeStore) Read(context.Context) (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Reads++
	return s.token, s.hasToken
}

func (s *FakeStore) Write(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Writes++
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.token, s.hasToken = token, true
	return nil
}

func (s *FakeStore) Clear(context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Clears++
	s.token, s.hasToken = "", false
}

// Calls returns the total number of store calls made.
func (s *FakeStore) Calls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.Reads + s.Writes + s.Clears
}

// Token returns the held token for assertions.
func (s *FakeStore) Token() (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.token, s.hasToken
}
