package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is a definition file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Extensions lists the file extensions recognised as definitions.
var Extensions = []string{".yaml", ".yml", ".json"}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported definition file extension %q", filepath.Ext(path))
}

// ReadDefinition decodes the definition file at path. An unnamed definition
// takes the file name without its extension.
func ReadDefinition(path string) (domain.Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.Definition{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("failed to read definition: %w", err)
	}
	def, err := Decode(data, format)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = stem(path)
	}
	return def, nil
}

// Decode parses a definition document.
//
// Moves may be written as a [to, push] list or a {to, push} map; push may be
// a string (one symbol per character) or a list of symbols. Unknown keys are
// errors.
func Decode(data []byte, format Format) (domain.Definition, error) {
	raw, err := decodeRaw(data, format)
	if err != nil {
		return domain.Definition{}, err
	}
	return FromMap(raw)
}

// FromMap converts an already parsed document into a Definition.
func FromMap(raw any) (domain.Definition, error) {
	var def domain.Definition
	if err := decodeInto(raw, &def); err != nil {
		return domain.Definition{}, fmt.Errorf("invalid definition: %w", err)
	}
	return def, nil
}

func decodeRaw(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	case FormatYAML, "":
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		var err error
		if raw, err = scalarsAsText(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty definition document")
	}
	return raw, nil
}

// scalarsAsText converts a YAML tree keeping every non-null scalar as its
// source text. Symbols and pushes are text: resolving `01` as an integer
// would turn the push "01" into "1".
func scalarsAsText(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return scalarsAsText(n.Content[0])
	case yaml.AliasNode:
		return scalarsAsText(n.Alias)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := scalarsAsText(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			key := k.Value
			if k.Tag == "!!null" {
				// A null input key is the lambda move.
				key = ""
			}
			if _, dup := m[key]; dup {
				return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, key)
			}
			v, err := scalarsAsText(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

func decodeInto(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			moveHook,
			pushHook,
		),
		// JSON numbers and FromMap callers may still hand over numeric symbols.
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

var (
	moveType = reflect.TypeOf(domain.Move{})
	pushType = reflect.TypeOf(domain.Push{})
)

// moveHook turns the [to, push] shorthand into the map form.
func moveHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != moveType || from.Kind() != reflect.Slice {
		return data, nil
	}
	items := reflect.ValueOf(data)
	switch items.Len() {
	case 1:
		return map[string]any{"to": items.Index(0).Interface()}, nil
	case 2:
		return map[string]any{"to": items.Index(0).Interface(), "push": items.Index(1).Interface()}, nil
	}
	return nil, fmt.Errorf("move must be [to] or [to, push], got %d elements", items.Len())
}

// pushHook splits a textual replacement into symbols.
func pushHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != pushType {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return domain.Push{}, nil
	case string:
		return domain.ParsePush(v), nil
	case json.Number:
		return domain.ParsePush(v.String()), nil
	case []any:
		return data, nil
	default:
		if from.Kind() == reflect.Slice {
			return data, nil
		}
		// A resolved number has lost its source text (leading zeros).
		return nil, fmt.Errorf("push must be text or a list of symbols, got %T %v", v, v)
	}
}

// Encode serialises def in the given format.
func Encode(def domain.Definition, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(def, "", "  ")
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
