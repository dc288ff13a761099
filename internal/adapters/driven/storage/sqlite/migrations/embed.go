// Package migrations holds the SQLite schema as numbered up/down scripts
// named NNN_description.up.sql and NNN_description.down.sql.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Migration is one schema step.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// All returns the embedded migrations in version order.
func All() ([]Migration, error) {
	return Load(files)
}

// Load reads migrations from fsys. Every version needs an up script and
// versions must be unique.
func Load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*Migration)
	for _, name := range names {
		base, dir, ok := cutDirection(name)
		if !ok {
			return nil, fmt.Errorf("migration %s: want .up.sql or .down.sql", name)
		}
		num, label, _ := strings.Cut(base, "_")
		version, err := strconv.Atoi(num)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: bad version %q", name, num)
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: label}
			byVersion[version] = m
		} else if m.Name != label {
			return nil, fmt.Errorf("migration %d: names %q and %q disagree", version, m.Name, label)
		}
		if dir == "up" {
			m.Up = string(data)
		} else {
			m.Down = string(data)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.Up) == "" {
			return nil, fmt.Errorf("migration %d: missing up script", m.Version)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

func cutDirection(name string) (base, dir string, ok bool) {
	if base, ok = strings.CutSuffix(name, ".up.sql"); ok {
		return base, "up", true
	}
	if base, ok = strings.CutSuffix(name, ".down.sql"); ok {
		return base, "down", true
	}
	return "", "", false
}
