// Package storage resolves every on-disk location the application uses
// from a single root directory, so tests and alternate installs never
// touch the real user profile.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName = "ticketmate"
	// EnvHome overrides the default root directory.
	EnvHome = "TICKETMATE_HOME"
)

// Root is the injected storage capability.
type Root struct {
	dir string
}

func NewRoot(dir string) *Root {
	return &Root{dir: dir}
}

// DefaultRoot picks $TICKETMATE_HOME, then $XDG_CONFIG_HOME/ticketmate,
// then ~/.ticketmate.
func DefaultRoot() (*Root, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return NewRoot(dir), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return NewRoot(filepath.Join(xdg, appDirName)), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error resolving home directory: %w", err)
	}
	if home == "" {
		return nil, fmt.Errorf("home directory is empty")
	}
	return NewRoot(filepath.Join(home, "."+appDirName)), nil
}

func (r *Root) Dir() string        { return r.dir }
func (r *Root) DraftsDir() string  { return filepath.Join(r.dir, "drafts") }
func (r *Root) TeamsDir() string   { return filepath.Join(r.dir, "teams") }
func (r *Root) CacheDir() string   { return filepath.Join(r.dir, "cache") }
func (r *Root) LogsDir() string    { return filepath.Join(r.dir, "logs") }
func (r *Root) LogFile() string    { return filepath.Join(r.LogsDir(), "ticketmate.log") }
func (r *Root) ConfigFile() string { return filepath.Join(r.dir, "config.json") }
func (r *Root) EnvFile() string    { return filepath.Join(r.dir, ".env") }

// Ensure creates the root and its subdirectories.
func (r *Root) Ensure() error {
	for _, dir := range []string{r.dir, r.DraftsDir(), r.TeamsDir(), r.CacheDir(), r.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file in the same directory and
// renames it over path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
