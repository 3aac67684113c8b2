package migration

import (
	"io/fs"
	"path"
	"sort"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/spf13/afero"

	"github.com/cybercog/ban/validation"
)

// DefaultTable tracks a set when no table is configured.
const DefaultTable = "schema_migrations"

// Set is a directory of migrations tracked by its own table.
type Set struct {
	Name  string `validate:"required"`
	FS    fs.FS  `validate:"required"`
	Dir   string
	Table string `validate:"required"`
}

// FromDir builds a Set over dir on fsys, typically the published
// migrations working directory.
func FromDir(fsys afero.Fs, dir, name, table string) Set {
	return Set{
		Name:  name,
		FS:    afero.NewIOFS(afero.NewBasePathFs(fsys, dir)),
		Dir:   ".",
		Table: table,
	}
}

func (s Set) validate() error {
	return validation.Validate(s)
}

func (s Set) dir() string {
	if s.Dir == "" {
		return "."
	}
	return s.Dir
}

// empty reports whether the set has no up migrations. A missing directory
// counts as empty.
func (s Set) empty() bool {
	matches, err := fs.Glob(s.FS, path.Join(s.dir(), "*.up.sql"))
	return err != nil || len(matches) == 0
}

// File is one migration version with its up and down file names.
type File struct {
	Version    uint
	Identifier string
	Up         string
	Down       string
}

// Name is the up file name, or the down file name when there is no up file.
func (f File) Name() string {
	if f.Up != "" {
		return f.Up
	}
	return f.Down
}

// files lists the migrations of s in version order. Files that do not
// follow the migration naming scheme are ignored.
func (s Set) files() ([]File, error) {
	entries, err := fs.ReadDir(s.FS, s.dir())
	if err != nil {
		return nil, err
	}

	byVersion := make(map[uint]*File)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m, err := source.Parse(entry.Name())
		if err != nil {
			continue
		}
		f, ok := byVersion[m.Version]
		if !ok {
			f = &File{Version: m.Version, Identifier: m.Identifier}
			byVersion[m.Version] = f
		}
		switch m.Direction {
		case source.Up:
			f.Up = entry.Name()
		case source.Down:
			f.Down = entry.Name()
		}
	}

	result := make([]File, 0, len(byVersion))
	for _, f := range byVersion {
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}
