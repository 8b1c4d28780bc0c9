package file

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/aretw0/pushdown/pkg/domain"
)

// Catalog implements ports.DefinitionLoader over a single file holding many
// definitions:
//
//	automata:
//	  parens:
//	    states: [q0, q1]
//	    ...
type Catalog struct {
	definitions map[string]domain.Definition
}

type catalogDocument struct {
	Automata map[string]any `mapstructure:"automata"`
}

// LoadCatalog reads a catalog file (YAML or JSON).
func LoadCatalog(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := DecodeCatalog(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// DecodeCatalog parses a catalog document.
func DecodeCatalog(data []byte, format Format) (*Catalog, error) {
	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, err
	}
	var doc catalogDocument
	if err := decodeInto(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	cat := &Catalog{definitions: make(map[string]domain.Definition, len(doc.Automata))}
	for _, name := range slices.Sorted(maps.Keys(doc.Automata)) {
		def, err := FromMap(doc.Automata[name])
		if err != nil {
			return nil, fmt.Errorf("automaton %s: %w", name, err)
		}
		def.Name = name
		cat.definitions[name] = def
	}
	return cat, nil
}

// Get returns a copy of the named definition.
func (c *Catalog) Get(ctx context.Context, name string) (domain.Definition, error) {
	def, ok := c.definitions[name]
	if !ok {
		return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
	}
	return def.Clone(), nil
}

// List returns the catalog names, sorted.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(c.definitions)), nil
}
