package publish

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/cybercog/ban/errors"
)

// Clean removes every entry inside dir and returns the removed names.
// The directory itself is kept. A missing directory is an error.
func Clean(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Filesystem("list", dir, err)
	}

	removed := make([]string, 0, len(entries))
	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name())
		if err := fsys.RemoveAll(target); err != nil {
			return removed, errors.Filesystem("remove", target, err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
