// Package schemafile reads and writes form schemas on disk as JSON or YAML.
package schemafile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/commonapply/internal/types"
)

// Format is an on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension. Anything that is not
// .yaml or .yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses data and normalizes the result.
func Decode(data []byte, format Format) (types.Schema, error) {
	var s types.Schema
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return types.Schema{}, fmt.Errorf("decoding yaml schema: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return types.Schema{}, fmt.Errorf("decoding json schema: %w", err)
		}
	}
	return s.Normalize(), nil
}

// Encode renders s in the given format.
func Encode(s types.Schema, format Format) ([]byte, error) {
	if format == FormatYAML {
		out, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml schema: %w", err)
		}
		return out, nil
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json schema: %w", err)
	}
	return append(out, '\n'), nil
}

// ToJSON converts a document to JSON without going through types.Schema,
// so unknown keys survive for the linter.
func ToJSON(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding yaml schema: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting yaml schema to json: %w", err)
	}
	return out, nil
}

// Load reads and decodes the schema at path.
func Load(path string) (types.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Schema{}, fmt.Errorf("reading schema: %w", err)
	}
	s, err := Decode(data, FormatOf(path))
	if err != nil {
		return types.Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadJSON reads the file at path as a JSON document.
func ReadJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return ToJSON(data, FormatOf(path))
}

// Save writes s to path in the format implied by its extension.
func Save(path string, s types.Schema) error {
	data, err := Encode(s, FormatOf(path))
	if err != nil {
		return err
	}
	return atomicWrite(path, data, 0o644)
}

// atomicWrite writes data next to path and renames it into place.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".schema-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	success = true
	return nil
}
