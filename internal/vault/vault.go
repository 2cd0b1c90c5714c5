// Package vault is the rooted file store downloads land in. All paths are
// vault-relative with forward slashes; anything escaping the root is refused.
package vault

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sworl/mill/internal/errors"
)

// Vault stores files under a single root directory.
type Vault interface {
	// Exists reports whether the vault-relative path is an existing file.
	Exists(path string) bool

	// WriteBinary creates the file at the vault-relative path, creating
	// parent folders as needed, and overwrites any previous content.
	WriteBinary(path string, data []byte) error

	// ReadText returns the content of the file at the vault-relative path.
	ReadText(path string) (string, error)

	// Abs returns the absolute filesystem location of a vault-relative path.
	Abs(path string) (string, error)
}

// Dir is a Vault over a filesystem directory.
type Dir struct {
	root string
}

// NewDir returns a vault rooted at the given directory. The directory is
// created if missing.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string {
	return d.root
}

// Abs resolves a vault-relative path, refusing any that escapes the root.
func (d *Dir) Abs(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", errors.NewInvalidRequest("path escapes the vault: " + path)
	}
	return filepath.Join(d.root, cleaned), nil
}

func (d *Dir) Exists(path string) bool {
	abs, err := d.Abs(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

func (d *Dir) WriteBinary(path string, data []byte) error {
	abs, err := d.Abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return errors.NewInternal(err)
	}
	if err := os.WriteFile(abs, data, 0644); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func (d *Dir) ReadText(path string) (string, error) {
	abs, err := d.Abs(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFound(path)
		}
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}
