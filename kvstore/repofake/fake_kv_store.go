package fakekvstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/signals-client/kvstore"
)

var _ kvstore.Store = (*FakeKVStore)(nil)

// FakeKVStore is an in-memory kvstore.Store with injectable failures.
type FakeKVStore struct {
	values    map[string]string
	lock      sync.RWMutex
	GetErr    error
	SetErr    error
	RemoveErr error
	Sets      int
	Removes   int
}

func NewFakeKVStore() *FakeKVStore {
	return &FakeKVStore{values: make(map[string]string)}
}

func (s *FakeKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FakeKVStore) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sets++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.values[key] = value
	return nil
}

func (s *FakeKVStore) Remove(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Removes++
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	delete(s.values, key)
	return nil
}

// Value returns the raw stored value for assertions.
func (s *FakeKVStore) Value(key string) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.values[key]
	return v, ok
}
