package auth

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileRecordStore keeps the session blob in a single local file, the server
// analog of browser local storage.
type FileRecordStore struct {
	Path string
}

var _ RecordStore = FileRecordStore{}

func (f FileRecordStore) Load() ([]byte, bool, error) {
	blob, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (f FileRecordStore) Save(blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(f.Path, blob, 0600)
}

func (f FileRecordStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
