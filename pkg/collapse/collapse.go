// Package collapse rewrites response schemas of an OpenAPI document so that anyOf unions
// are replaced by the first paginated-result member of the union.
package collapse

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPrefix is the reference prefix of generated paginated wrapper schemas.
const DefaultPrefix = "#/components/schemas/PaginatedResult_"

// Config controls how unions are collapsed.
type Config struct {
	// Prefix a candidate's reference has to start with to be selected.
	// Defaults to DefaultPrefix.
	Prefix string

	// Logger receives warnings about unions dropped without a replacement.
	// Defaults to a logger that discards everything.
	Logger *slog.Logger
}

// Location identifies a response schema inside the document.
type Location struct {
	Path       string
	Method     string
	StatusCode string
	MediaType  string
}

func (l Location) String() string {
	return fmt.Sprintf("%q %s %s %s", l.Path, l.Method, l.StatusCode, l.MediaType)
}

// Rewrite describes a schema whose union was replaced with a reference.
type Rewrite struct {
	Location

	// Ref is the reference written into the schema.
	Ref string

	// Array is set when the selected member was an array of Ref.
	Array bool
}

// Collapser replaces anyOf unions of response schemas. It keeps no state between calls.
type Collapser struct {
	prefix string
	logger *slog.Logger
}

// NewCollapser creates a Collapser, filling in defaults for empty Config fields.
// A nil config is allowed.
func NewCollapser(cfg *Config) *Collapser {
	c := &Collapser{
		prefix: DefaultPrefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if cfg == nil {
		return c
	}
	if cfg.Prefix != "" {
		c.prefix = cfg.Prefix
	}
	if cfg.Logger != nil {
		c.logger = cfg.Logger
	}
	return c
}

// Collapse walks every response schema reachable through paths, methods, status codes
// and media types, in document order, and rewrites the ones holding an anyOf union.
// The document is modified in place. Missing or malformed levels are skipped.
// Returned rewrites follow the traversal order.
func (c *Collapser) Collapse(doc *yaml.Node) []Rewrite {
	var rewrites []Rewrite

	for path, pathItem := range entries(lookup(root(doc), "paths")) {
		for method, operation := range entries(pathItem) {
			for code, response := range entries(lookup(operation, "responses")) {
				for mediaType, content := range entries(lookup(response, "content")) {
					loc := Location{
						Path:       path,
						Method:     method,
						StatusCode: code,
						MediaType:  mediaType,
					}
					if rw, ok := c.collapseSchema(loc, lookup(content, "schema")); ok {
						rewrites = append(rewrites, rw)
					}
				}
			}
		}
	}

	return rewrites
}

func (c *Collapser) collapseSchema(loc Location, schema *yaml.Node) (Rewrite, bool) {
	union, ok := remove(schema, "anyOf")
	if !ok {
		return Rewrite{}, false
	}

	selected, ok := c.selectCandidate(union)
	if !ok {
		c.logger.Warn("union has no paginated member, dropping anyOf",
			"path", loc.Path,
			"method", loc.Method,
			"status", loc.StatusCode,
			"mediaType", loc.MediaType)
		return Rewrite{}, false
	}

	set(schema, "$ref", selected.ref)
	if selected.array {
		typ := lookup(selected.candidate, "type")
		if typ == nil {
			typ = lookup(lookup(selected.candidate, "items"), "type")
		}
		if typ != nil {
			set(schema, "type", typ)
		}
	}

	return Rewrite{
		Location: loc,
		Ref:      selected.ref.Value,
		Array:    selected.array,
	}, true
}

type candidate struct {
	candidate *yaml.Node
	ref       *yaml.Node
	array     bool
}

// selectCandidate returns the first union member referencing a paginated schema,
// either directly or through its items.
// A member whose own $ref is not paginated but whose items.$ref is counts as an array
// match, and the items reference is the one written.
func (c *Collapser) selectCandidate(union *yaml.Node) (candidate, bool) {
	for member := range elements(union) {
		if ref := lookup(member, "$ref"); c.matches(ref) {
			return candidate{candidate: member, ref: ref}, true
		}
		if ref := lookup(lookup(member, "items"), "$ref"); c.matches(ref) {
			return candidate{candidate: member, ref: ref, array: true}, true
		}
	}
	return candidate{}, false
}

func (c *Collapser) matches(ref *yaml.Node) bool {
	value, ok := stringValue(ref)
	return ok && strings.HasPrefix(value, c.prefix)
}
