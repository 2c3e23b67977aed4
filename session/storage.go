package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Storage persists a single session across process restarts. Load reports
// whether a session was present; a missing entry is not an error.
type Storage interface {
	Load(ctx context.Context) (Session, bool, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}

// FileStorage keeps the session as a JSON file on disk. Writes go through
// a temp file and rename so a crash mid-write cannot leave a truncated
// session behind.
type FileStorage struct {
	path string
}

// NewFileStorage returns a FileStorage writing to the given path. Parent
// directories are created on first save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load(ctx context.Context) (Session, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, errors.Wrap(err, "[FileStorage.Load] read session file")
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, false, errors.Wrap(err, "[FileStorage.Load] decode session file")
	}
	return s, true, nil
}

func (f *FileStorage) Save(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "[FileStorage.Save] encode session")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStorage.Save] create session directory")
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStorage.Save] write session file")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "[FileStorage.Save] rename session file")
	}
	return nil
}

func (f *FileStorage) Delete(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStorage.Delete] remove session file")
	}
	return nil
}

var _ Storage = (*FileStorage)(nil)
