package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/pushdown/pkg/domain"
)

// ErrInvalidName is returned by Save for names that cannot be a file stem.
var ErrInvalidName = errors.New("invalid automaton name")

// validName rejects names that would escape the directory or that Get
// could not find again.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Loader implements ports.DefinitionLoader over a directory of definition
// files. The name of each automaton is its file name without extension.
type Loader struct {
	Dir string
}

// NewLoader creates a Loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Get reads and decodes the definition called name.
func (l *Loader) Get(ctx context.Context, name string) (domain.Definition, error) {
	if err := ctx.Err(); err != nil {
		return domain.Definition{}, err
	}
	if validName(name) != nil {
		return domain.Definition{}, fmt.Errorf("%w: %q", domain.ErrAutomatonNotFound, name)
	}

	for _, ext := range Extensions {
		path := filepath.Join(l.Dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return domain.Definition{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		def, err := ReadDefinition(path)
		if err != nil {
			return domain.Definition{}, err
		}
		// The file name is the lookup key; a name inside the file must agree.
		def.Name = name
		return def, nil
	}
	return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
}

// List returns the names of all definition files in the directory.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(Extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		names = append(names, stem(entry.Name()))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Save writes def to the directory as YAML, replacing any previous file of
// the same name.
func (l *Loader) Save(ctx context.Context, def domain.Definition) error {
	if err := validName(def.Name); err != nil {
		return err
	}
	data, err := Encode(def, FormatYAML)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure definition directory: %w", err)
	}
	for _, ext := range Extensions {
		_ = os.Remove(filepath.Join(l.Dir, def.Name+ext))
	}
	return writeAtomic(l.Dir, def.Name+".yaml", data)
}
