package storage

import "errors"

// ErrKeyNotFound is returned by Backend.Read for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// Backend is raw byte-level persistence underneath the Adapter. Writes
// must be atomic: a key holds either the full new value or the old one.
type Backend interface {
	Write(key string, value []byte) error
	Read(key string) ([]byte, error)
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}
