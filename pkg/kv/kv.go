// Package kv provides the key-value store behind users, chat threads, and
// messages. Keys are flat strings with '/'-separated segments (e.g.
// "thread/u1/t42"); Scan walks a raw byte prefix in lexicographic order.
//
// Badger is the on-disk production backend; Memory backs tests and the
// ephemeral dev mode.
package kv

import (
	"context"
	"errors"
	"iter"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Entry is a key-value pair yielded by Scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a flat key-value store. Implementations are safe for concurrent
// use.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores a key-value pair, overwriting any existing value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan iterates over entries whose key starts with prefix, in
	// lexicographic key order. Prefixes are raw: include the trailing
	// separator to avoid "thread/u1" matching "thread/u10".
	Scan(ctx context.Context, prefix string) iter.Seq2[Entry, error]

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Close releases any resources held by the store.
	Close() error
}

// Join builds a key from path segments.
func Join(segments ...string) string {
	key := ""
	for i, seg := range segments {
		if i > 0 {
			key += "/"
		}
		key += seg
	}
	return key
}
