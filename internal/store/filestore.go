package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kpssquiz/internal/models"
)

// FileStore keeps accounts in a single JSON document (kullanicilar.json in
// the original deployment).
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) LoadAll() (models.Accounts, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return models.Accounts{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user store %s: %w", s.Path, err)
	}

	accounts := models.Accounts{}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.Path, err)
	}
	return accounts, nil
}

// SaveAll writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write never leaves a half-written store behind.
func (s *FileStore) SaveAll(accounts models.Accounts) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal user store: %w", err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace user store %s: %w", s.Path, err)
	}
	return nil
}
