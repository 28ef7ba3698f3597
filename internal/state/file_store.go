package state

import (
	"context"
	"os"
	"path/filepath"
)

// FileStore keeps documents on local disk
type FileStore struct{}

// Read returns the contents of the file at path
func (FileStore) Read(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write replaces the file at path, creating parent directories
func (FileStore) Write(_ context.Context, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
