package kv

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Scoped namespaces every key under a digest of the session id, so one
// shopper's browser never sees another's entries and raw session ids never
// reach the backend.
type Scoped struct {
	inner  Store
	prefix string
}

func NewScoped(inner Store, sessionID string) *Scoped {
	sum := blake2b.Sum256([]byte(sessionID))
	return &Scoped{inner: inner, prefix: "session:" + hex.EncodeToString(sum[:16]) + ":"}
}

func (s *Scoped) Read(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Read(ctx, s.prefix+key)
}

func (s *Scoped) Write(ctx context.Context, key, value string) error {
	return s.inner.Write(ctx, s.prefix+key, value)
}

// Prefix returns the namespace prepended to keys.
func (s *Scoped) Prefix() string { return s.prefix }
