// Package storage keeps uploaded report files on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNotExist is returned when a stored file is missing.
var ErrNotExist = errors.New("file does not exist")

var whitespace = regexp.MustCompile(`\s+`)

const maxNameAttempts = 16

// StoredFile describes a file written to the store.
type StoredFile struct {
	Name string
	Path string
	Size int64
}

// FileInfo is one entry of List.
type FileInfo struct {
	Name    string
	ModTime time.Time
}

// FileStore stores files flat under a root directory.
type FileStore struct {
	root string
	now  func() time.Time
}

// NewFileStore creates root if it does not exist.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{root: root, now: time.Now}, nil
}

func (s *FileStore) Root() string { return s.root }

// StoredName returns <unixmillis>-<original with whitespace runs as _>.
func (s *FileStore) StoredName(original string) string {
	return storedName(s.now().UnixMilli(), original)
}

func storedName(millis int64, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = whitespace.ReplaceAllString(base, "_")
	return strconv.FormatInt(millis, 10) + "-" + base
}

// Save writes r under a generated name. A name taken within the same
// millisecond moves to the next one.
func (s *FileStore) Save(original string, r io.Reader) (*StoredFile, error) {
	millis := s.now().UnixMilli()

	var (
		f    *os.File
		name string
		path string
		err  error
	)
	for i := int64(0); i < maxNameAttempts; i++ {
		name = storedName(millis+i, original)
		path = filepath.Join(s.root, name)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if !errors.Is(err, os.ErrExist) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return &StoredFile{Name: name, Path: path, Size: n}, nil
}

// Path resolves a stored name inside the root.
func (s *FileStore) Path(name string) (string, error) {
	clean := filepath.Base(name)
	if clean != name || clean == "." || clean == ".." || clean == "/" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.root, clean), nil
}

// Stat reports whether a stored file exists.
func (s *FileStore) Stat(name string) (os.FileInfo, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return info, err
}

// Remove deletes a stored file. A missing file yields ErrNotExist.
func (s *FileStore) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotExist
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// List returns the regular files under the root.
func (s *FileStore) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload directory: %w", err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}
