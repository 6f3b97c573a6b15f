package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	defaultFileMode = os.FileMode(0o644)
	defaultDirMode  = os.FileMode(0o755)
)

// FileOption configures a FileTarget.
type FileOption func(*FileTarget)

// WithFileMode sets the permission bits applied to the written document.
func WithFileMode(mode os.FileMode) FileOption {
	return func(t *FileTarget) {
		if mode != 0 {
			t.mode = mode
		}
	}
}

// WithClock overrides the time source used for Meta.UpdatedAt.
func WithClock(now func() time.Time) FileOption {
	return func(t *FileTarget) {
		if now != nil {
			t.now = now
		}
	}
}

// FileTarget persists the document as a single file on an afero.Fs.
type FileTarget struct {
	fs   afero.Fs
	path string
	mode os.FileMode
	now  func() time.Time
}

// NewFileTarget returns a target for path on fs.
func NewFileTarget(fs afero.Fs, path string, opts ...FileOption) *FileTarget {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	t := &FileTarget{
		fs:   fs,
		path: filepath.Clean(path),
		mode: defaultFileMode,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// NewOSFileTarget returns a target for path on the operating system file system.
func NewOSFileTarget(path string, opts ...FileOption) *FileTarget {
	return NewFileTarget(afero.NewOsFs(), path, opts...)
}

func (t *FileTarget) Location() string {
	return t.path
}

func (t *FileTarget) Exists(ctx context.Context) (bool, error) {
	if err := contextErr(ctx); err != nil {
		return false, err
	}
	ok, err := afero.Exists(t.fs, t.path)
	if err != nil {
		return false, fmt.Errorf("state: stat %q: %w", t.path, err)
	}
	return ok, nil
}

func (t *FileTarget) Read(ctx context.Context) ([]byte, error) {
	if err := contextErr(ctx); err != nil {
		return nil, err
	}
	payload, err := afero.ReadFile(t.fs, t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("state: read %q: %w", t.path, ErrNotFound)
		}
		return nil, fmt.Errorf("state: read %q: %w", t.path, err)
	}
	return payload, nil
}

// Write stages payload in a temporary sibling file and renames it over the
// target once it is flushed and closed. The temporary file is always closed and
// is removed when any step fails.
func (t *FileTarget) Write(ctx context.Context, payload []byte) (meta Meta, err error) {
	if err := contextErr(ctx); err != nil {
		return Meta{}, err
	}

	dir := filepath.Dir(t.path)
	if err := t.fs.MkdirAll(dir, defaultDirMode); err != nil {
		return Meta{}, fmt.Errorf("state: create directory %q: %w", dir, err)
	}

	tmp, err := afero.TempFile(t.fs, dir, "."+filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return Meta{}, fmt.Errorf("state: create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = t.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		return Meta{}, fmt.Errorf("state: write %q: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return Meta{}, fmt.Errorf("state: sync %q: %w", tmpName, err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return Meta{}, fmt.Errorf("state: close %q: %w", tmpName, err)
	}
	if err = t.fs.Chmod(tmpName, t.mode); err != nil {
		return Meta{}, fmt.Errorf("state: chmod %q: %w", tmpName, err)
	}
	if err = t.fs.Rename(tmpName, t.path); err != nil {
		return Meta{}, fmt.Errorf("state: replace %q: %w", t.path, err)
	}

	return Meta{
		SnapshotID: uuid.NewString(),
		UpdatedAt:  t.now().UTC(),
		Size:       len(payload),
	}, nil
}
