package credentials

import (
	"context"

	"github.com/jrsteele09/signals-client/kvstore"
)

var _ Backend = (*KVBackend)(nil)

// KVBackend stores credentials unencrypted in a kvstore.Store. It is always available.
type KVBackend struct {
	store kvstore.Store
}

func NewKVBackend(store kvstore.Store) *KVBackend {
	return &KVBackend{store: store}
}

func (*KVBackend) Name() string { return "kvstore" }

func (*KVBackend) Available(context.Context) (bool, error) { return true, nil }

func (b *KVBackend) Get(ctx context.Context, key string) (string, bool, error) {
	return b.store.Get(ctx, key)
}

func (b *KVBackend) Set(ctx context.Context, key, value string) error {
	return b.store.Set(ctx, key, value)
}

func (b *KVBackend) Delete(ctx context.Context, key string) error {
	return b.store.Remove(ctx, key)
}
