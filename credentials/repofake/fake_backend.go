package fakecredentials

import (
	"context"
	"sync"

	"github.com/jrsteele09/signals-client/credentials"
)

var _ credentials.Backend = (*FakeBackend)(nil)

// FakeBackend is an in-memory credentials.Backend with injectable failures.
type FakeBackend struct {
	name   string
	values map[string]string
	lock   sync.Mutex

	IsAvailable  bool
	AvailableErr error
	GetErr       error
	SetErr       error
	DeleteErr    error

	Probes  int
	Gets    int
	Sets    int
	Deletes int
}

func NewFakeBackend(name string) *FakeBackend {
	return &FakeBackend{name: name, values: make(map[string]string), IsAvailable: true}
}

func (b *FakeBackend) Name() string { return b.name }

func (b *FakeBackend) Available(context.Context) (bool, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.Probes++
	return b.IsAvailable, b.AvailableErr
}

func (b *FakeBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.Gets++
	if b.GetErr != nil {
		return "", false, b.GetErr
	}
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *FakeBackend) Set(_ context.Context, key, value string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.Sets++
	if b.SetErr != nil {
		return b.SetErr
	}
	b.values[key] = value
	return nil
}

func (b *FakeBackend) Delete(_ context.Context, key string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.Deletes++
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	delete(b.values, key)
	return nil
}

// Value returns the stored value for assertions.
func (b *FakeBackend) Value(key string) (string, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	v, ok := b.values[key]
	return v, ok
}
