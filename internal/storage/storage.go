package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pfrederiksen/ff-calendar/internal/month"
)

// Storage handles persistence of raw month documents
type Storage struct {
	dataDir string
}

// Document is a raw month document found on disk
type Document struct {
	Key  month.Key
	Path string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// ExpandHome expands a leading ~/ to the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Dir returns the data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// Path returns the path of the raw document for a month
func (s *Storage) Path(key month.Key) string {
	return filepath.Join(s.dataDir, key.FileName())
}

// Exists reports whether the month's document is already on disk
func (s *Storage) Exists(key month.Key) (bool, error) {
	info, err := os.Stat(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking document: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Save writes the month's day list, indented, without altering field names or
// values.
func (s *Storage) Save(key month.Key, days json.RawMessage) error {
	if !json.Valid(days) {
		return fmt.Errorf("saving %s: document is not valid JSON", key)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, days, "", "  "); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	buf.WriteByte('\n')

	return WriteFileAtomic(s.Path(key), func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// SaveScreenshot writes the diagnostic capture of a bot-challenge and returns
// its path
func (s *Storage) SaveScreenshot(key month.Key, png []byte) (string, error) {
	path := filepath.Join(s.dataDir, key.ScreenshotName())
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	return path, nil
}

// List returns every raw document in the data directory, oldest month first.
// Files that do not follow the document naming are ignored.
func (s *Storage) List() ([]Document, error) {
	return ListDir(s.dataDir)
}

// ListDir lists raw documents in dir without creating it
func ListDir(dir string) ([]Document, error) {
	dir, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		key, err := month.ParseFileName(e.Name())
		if err != nil {
			continue
		}
		docs = append(docs, Document{Key: key, Path: filepath.Join(dir, e.Name())})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Key.Before(docs[j].Key)
	})
	return docs, nil
}

// WriteFileAtomic writes path through a temporary file in the same directory
// and renames it into place once write returns successfully.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()           // nolint:errcheck
			os.Remove(tmp.Name()) // nolint:errcheck
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
