package credentials

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	apperrors "github.com/jrsteele09/signals-client/internal/errors"
)

const (
	minKeyMaterial = 32
	hkdfInfo       = "signals-client credential store v1"
)

var _ Backend = (*SecureFileBackend)(nil)

// SecureFileBackend keeps each value in its own XChaCha20-Poly1305 sealed file.
// The encryption key is derived from a key file; without it the backend is unavailable.
//
// Files are written 0600 inside a 0700 directory. The key name is bound as additional
// data so a sealed file cannot be replayed under another key.
type SecureFileBackend struct {
	dir     string
	keyFile string

	initOnce sync.Once
	aead     cipher.AEAD
	initErr  error
}

func NewSecureFileBackend(dir, keyFile string) *SecureFileBackend {
	return &SecureFileBackend{dir: dir, keyFile: keyFile}
}

func (*SecureFileBackend) Name() string { return "secure-file" }

func (b *SecureFileBackend) Available(context.Context) (bool, error) {
	if err := b.init(); err != nil {
		return false, err
	}
	return true, nil
}

func (b *SecureFileBackend) init() error {
	b.initOnce.Do(func() {
		secret, err := os.ReadFile(b.keyFile)
		if err != nil {
			b.initErr = fmt.Errorf("%w: read key file: %v", apperrors.ErrCredentialUnavailable, err)
			return
		}
		if len(secret) < minKeyMaterial {
			b.initErr = fmt.Errorf("%w: key file shorter than %d bytes", apperrors.ErrCredentialUnavailable, minKeyMaterial)
			return
		}

		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
			b.initErr = fmt.Errorf("derive key: %w", err)
			return
		}
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			b.initErr = fmt.Errorf("init cipher: %w", err)
			return
		}

		if err := os.MkdirAll(b.dir, 0o700); err != nil {
			b.initErr = fmt.Errorf("%w: create directory: %v", apperrors.ErrCredentialUnavailable, err)
			return
		}
		b.aead = aead
	})
	return b.initErr
}

func (b *SecureFileBackend) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(b.dir, hex.EncodeToString(sum[:16])+".enc")
}

func (b *SecureFileBackend) Get(_ context.Context, key string) (string, bool, error) {
	if err := b.init(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read sealed value: %w", err)
	}
	if len(data) < chacha20poly1305.NonceSizeX {
		return "", false, fmt.Errorf("sealed value for %s is truncated", key)
	}
	nonce, sealed := data[:chacha20poly1305.NonceSizeX], data[chacha20poly1305.NonceSizeX:]
	plain, err := b.aead.Open(nil, nonce, sealed, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("open sealed value: %w", err)
	}
	return string(plain), true, nil
}

func (b *SecureFileBackend) Set(_ context.Context, key, value string) error {
	if err := b.init(); err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(value), []byte(key))

	path := b.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("write sealed value: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace sealed value: %w", err)
	}
	return nil
}

func (b *SecureFileBackend) Delete(_ context.Context, key string) error {
	if err := b.init(); err != nil {
		return err
	}
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete sealed value: %w", err)
	}
	return nil
}

// EnsureKeyFile creates a random key file at path unless one already exists.
func EnsureKeyFile(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("create key directory: %w", err)
	}
	secret := make([]byte, 64)
	if _, err := rand.Read(secret); err != nil {
		return false, fmt.Errorf("generate key: %w", err)
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return false, fmt.Errorf("write key file: %w", err)
	}
	return true, nil
}
