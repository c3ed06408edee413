// Package prefs persists user preferences that outlive a server session.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the preferences file created in the project directory.
const DefaultFileName = ".assetgraph.toml"

// document is the on-disk layout of the preferences file.
type document struct {
	IgnoreFolders string `toml:"ignore_folders"`
}

// File stores preferences in a TOML file. A missing file reads as empty
// preferences and is created on the first write.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a preference store backed by path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (document, error) {
	var doc document
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading preferences: %w", err)
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing preferences %s: %w", f.path, err)
	}
	return doc, nil
}

// IgnoreList returns the stored comma-delimited ignore folder list.
func (f *File) IgnoreList() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return "", err
	}
	return doc.IgnoreFolders, nil
}

// SetIgnoreList stores the raw ignore folder list. The file is replaced
// atomically so a crash never leaves a truncated document behind.
func (f *File) SetIgnoreList(raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.IgnoreFolders = raw

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Memory keeps preferences in memory only.
type Memory struct {
	mu     sync.Mutex
	ignore string
	err    error
}

// NewMemory returns an in-memory preference store seeded with an ignore list.
func NewMemory(ignoreList string) *Memory {
	return &Memory{ignore: ignoreList}
}

// FailWith makes every later call return err.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) IgnoreList() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ignore, m.err
}

func (m *Memory) SetIgnoreList(raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.ignore = raw
	return nil
}
