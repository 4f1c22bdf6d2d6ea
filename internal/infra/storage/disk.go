// Package storage keeps uploaded product pictures on the local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Disk writes files under Dir
type Disk struct {
	Dir string
}

func NewDisk(dir string) *Disk {
	return &Disk{Dir: dir}
}

// Save writes r to name. Existing files are never overwritten.
func (d *Disk) Save(name string, r io.Reader) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Remove deletes name; a missing file is not an error.
func (d *Disk) Remove(name string) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Disk) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("storage: invalid file name %q", name)
	}
	return filepath.Join(d.Dir, name), nil
}
