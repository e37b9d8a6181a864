package qstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// File format identifiers written into every JSON table.
const (
	FileFormat  = "qlearn/qtable"
	FileVersion = 1
)

type fileDocument struct {
	Format  string         `json:"format"`
	Version int            `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	Entries []qtable.Entry `json:"entries"`
}

// FileStore keeps a table in a single JSON document.
type FileStore struct {
	path string
}

// NewFileStore returns a store for the JSON document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes entries to a temporary file next to the target and renames it
// over the target, so readers never see a half-written table.
func (s *FileStore) Save(entries []qtable.Entry) error {
	if entries == nil {
		entries = []qtable.Entry{}
	}
	data, err := json.MarshalIndent(fileDocument{
		Format:  FileFormat,
		Version: FileVersion,
		SavedAt: time.Now().UTC(),
		Entries: entries,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode table")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write table")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync table")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close table")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, "failed to replace table")
	}
	return nil
}

// Load reads and checks the document at the store's path.
func (s *FileStore) Load() ([]qtable.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read table")
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode table")
	}
	if doc.Format != FileFormat {
		return nil, errors.Newf("unexpected format %q, want %q", doc.Format, FileFormat)
	}
	if doc.Version != FileVersion {
		return nil, errors.Newf("unsupported table version %d", doc.Version)
	}
	return doc.Entries, nil
}

// Close is a no-op; the file is only open during Save and Load.
func (s *FileStore) Close() error { return nil }
