// Package document loads and saves OpenAPI documents as ordered node trees,
// so that keys keep their position across a load/save cycle.
package document

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cubahno/unioncollapse/internal/files"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is a parsed document.
type Document struct {
	// Root is the top-level mapping.
	Root *yaml.Node

	// Format the document was read from.
	Format Format
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse parses JSON or YAML contents.
// Contents starting with an object or array are held to strict JSON.
func Parse(data []byte) (*Document, error) {
	var (
		node   *yaml.Node
		format Format
		err    error
	)

	data = bytes.TrimPrefix(data, utf8BOM)
	if isJSON(data) {
		format = FormatJSON
		node, err = decodeJSON(data)
	} else {
		format = FormatYAML
		node, err = decodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %w", ErrParse, ErrRootNotMapping)
	}

	return &Document{Root: node, Format: format}, nil
}

// Encode serializes the document with 2-space indentation.
func (d *Document) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d.Root); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		if err := encodeJSON(&buf, d.Root, 0); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// Save writes the document to path: YAML for .yaml/.yml paths, JSON otherwise.
// The document is encoded completely before the file is touched.
func (d *Document) Save(path string) error {
	format := FormatJSON
	if files.IsYamlFile(path) {
		format = FormatYAML
	}

	data, err := d.Encode(format)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := files.SaveFile(path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

func isJSON(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && (data[0] == '{' || data[0] == '[')
}

func decodeYAML(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	node := doc.Content[0]
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node, nil
}
