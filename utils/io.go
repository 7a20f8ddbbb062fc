package utils

import (
	"os"
	"path/filepath"

	"github.com/go-errors/errors"
)

// WriteLocalBytes writes b to destinationPath by way of a temporary file in
// the same directory, so a failed write never leaves a partial file behind.
func WriteLocalBytes(b []byte, destinationRoot string, destinationPath string) error {
	if _, err := os.Stat(destinationRoot); os.IsNotExist(err) {
		if err := os.MkdirAll(destinationRoot, 0755); err != nil {
			return errors.Wrap(err, 0)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(destinationPath), "."+filepath.Base(destinationPath)+".*")
	if err != nil {
		return errors.Wrap(err, 0)
	}
	name := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrap(err, 0)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(err, 0)
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return errors.Wrap(err, 0)
	}
	if err := os.Rename(name, destinationPath); err != nil {
		os.Remove(name)
		return errors.Wrap(err, 0)
	}
	return nil
}

// ReadLocalBytes is the counterpart used when a payload input has already
// been staged on disk.
func ReadLocalBytes(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return b, nil
}
