// credentials caches the opaque auth credential and the last room id on
// disk, the way the browser client kept them in local storage.
package credentials

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Cache 本地缓存的登录凭证与房间信息
type Cache struct {
	Credential string `json:"credential"`
	UserID     string `json:"user_id"`
	RoomID     string `json:"room_id,omitempty"`
}

type FileStore struct {
	path string
}

// NewFileStore stores the cache at path; an empty path resolves to
// avalon/session.json under the user config directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "avalon", "session.json")
	}
	return &FileStore{path: path}, nil
}

// Load returns the cached values, or an empty cache when none was ever
// saved.
func (s *FileStore) Load() (Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Cache{}, nil
		}
		return Cache{}, err
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		// A corrupt cache is the same as no cache.
		return Cache{}, nil
	}
	return c, nil
}

func (s *FileStore) Save(c Cache) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// ClearRoom forgets the room id but keeps the credential, e.g. after an
// invalid-room close.
func (s *FileStore) ClearRoom() error {
	c, err := s.Load()
	if err != nil {
		return err
	}
	c.RoomID = ""
	return s.Save(c)
}

// ClearCredential wipes everything. Used after an invalid-credential
// close or a host kick.
func (s *FileStore) ClearCredential() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
