package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists slot values on disk under a base directory, one
// directory per namespace and one file per slot.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./var/forms"
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create local storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Namespace returns the slot area for ns.
func (s *LocalStorage) Namespace(ns string) Slots {
	return &FileSlots{dir: filepath.Join(s.baseDir, sanitize(ns))}
}

// CleanupOlderThan removes slot files untouched for longer than ttl and returns deleted names.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup local storage: %w", err)
	}
	if err := s.pruneEmptyNamespaces(); err != nil {
		return deleted, fmt.Errorf("cleanup local storage: %w", err)
	}
	return deleted, nil
}

// pruneEmptyNamespaces drops namespace directories left with no slots.
// A concurrent Set that recreates the directory simply makes it again.
func (s *LocalStorage) pruneEmptyNamespaces() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.baseDir, entry.Name())
		children, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if len(children) > 0 {
			continue
		}
		// os.Remove refuses non-empty directories, so a slot written since ReadDir survives.
		_ = os.Remove(dir)
	}
	return nil
}

// FileSlots is one namespace directory.
type FileSlots struct {
	dir string
}

// Get reads a slot. The bool reports whether the slot exists.
func (f *FileSlots) Get(name string) (string, bool, error) {
	data, err := os.ReadFile(f.resolve(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read slot %s: %w", name, err)
	}
	return string(data), true, nil
}

// Set overwrites a slot. The write goes through a temp file and rename so readers never see a torn value.
func (f *FileSlots) Set(name, value string) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("prepare slot directory: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, "."+sanitize(name)+"-*")
	if err != nil {
		return fmt.Errorf("create slot temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write slot %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), f.resolve(name)); err != nil {
		return fmt.Errorf("commit slot %s: %w", name, err)
	}
	return nil
}

// Remove deletes a slot if present.
func (f *FileSlots) Remove(name string) error {
	if err := os.Remove(f.resolve(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove slot %s: %w", name, err)
	}
	return nil
}

func (f *FileSlots) resolve(name string) string {
	return filepath.Join(f.dir, sanitize(name))
}

func sanitize(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "default"
	}
	return out
}
