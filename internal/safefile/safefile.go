// Package safefile writes files through a temporary sibling and an
// atomic rename, so a failed write never replaces a valid previous file.
package safefile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write creates filePath by streaming through fn into a temp file in the
// same directory and renaming it over the destination on success. On any
// error the temp file is removed and the destination is left untouched.
func Write(filePath string, fn func(f *os.File) error) (err error) {
	dir, base := filepath.Split(filePath)
	tmp, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %v: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), filePath); err != nil {
		return err
	}
	return nil
}
