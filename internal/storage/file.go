package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each key as its own file under a root directory.
// Writes go through a temp file and rename so a key never holds a
// partial value.
type FileBackend struct {
	root string
}

// NewFileBackend creates the root directory if needed.
func NewFileBackend(root string) (*FileBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileBackend{root: root}, nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.root, key)
}

func (f *FileBackend) Write(key string, value []byte) error {
	target := f.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write temp value: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp value: %w", err)
	}
	return nil
}

func (f *FileBackend) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read value file: %w", err)
	}
	return data, nil
}

func (f *FileBackend) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return ErrKeyNotFound
	}
	return err
}

func (f *FileBackend) Keys() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}

func (f *FileBackend) Close() error { return nil }
