// Package kv is the persistent key/value port used for cart snapshots and
// catalog cache entries. Reads and writes are synchronous string operations;
// a missing key is reported as absent, not as an error.
package kv

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("storage unavailable")

type Store interface {
	// Read returns the stored value and true, or "" and false when the key is absent.
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

// Nop stands in for storage outside an interactive session: every key is
// absent and writes are dropped.
type Nop struct{}

func (Nop) Read(context.Context, string) (string, bool, error) { return "", false, nil }
func (Nop) Write(context.Context, string, string) error        { return nil }
