// Package atomicfile writes files through a temporary sibling and a rename so a
// crash mid-write never leaves a half-written file behind.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	s, err := Stage(path, data, perm)
	if err != nil {
		return err
	}
	return s.Commit()
}

// Staged is a fully written temporary file waiting to replace its target.
type Staged struct {
	target string
	tmp    string
	done   bool
}

// Stage writes data to a temporary file next to path and syncs it to disk.
// The target is untouched until Commit.
func Stage(path string, data []byte, perm os.FileMode) (*Staged, error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	cleanup := func(cause error) (*Staged, error) {
		f.Close()
		os.Remove(tmp)
		return nil, cause
	}

	if _, err := f.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp file: %w", err))
	}
	if err := f.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := f.Chmod(perm); err != nil {
		return cleanup(fmt.Errorf("chmod temp file: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &Staged{target: path, tmp: tmp}, nil
}

// Target returns the path the staged file will replace.
func (s *Staged) Target() string { return s.target }

// Commit renames the temporary file over the target.
func (s *Staged) Commit() error {
	if s.done {
		return errors.New("staged file already finalized")
	}
	s.done = true
	if err := os.Rename(s.tmp, s.target); err != nil {
		os.Remove(s.tmp)
		return fmt.Errorf("replace %s: %w", s.target, err)
	}
	return nil
}

// Abort removes the temporary file. It is a no-op after Commit.
func (s *Staged) Abort() {
	if s.done {
		return
	}
	s.done = true
	os.Remove(s.tmp)
}

// Batch stages several files and commits them together.
type Batch struct {
	staged []*Staged
}

// Add stages data for path. On error the batch should be aborted.
func (b *Batch) Add(path string, data []byte, perm os.FileMode) error {
	s, err := Stage(path, data, perm)
	if err != nil {
		return err
	}
	b.staged = append(b.staged, s)
	return nil
}

// Len returns the number of staged files.
func (b *Batch) Len() int { return len(b.staged) }

// Commit renames every staged file into place, stopping at the first failure.
// Files not yet renamed are cleaned up.
func (b *Batch) Commit() error {
	for i, s := range b.staged {
		if err := s.Commit(); err != nil {
			for _, rest := range b.staged[i+1:] {
				rest.Abort()
			}
			return err
		}
	}
	return nil
}

// Abort removes every staged file that was not committed.
func (b *Batch) Abort() {
	for _, s := range b.staged {
		s.Abort()
	}
}
