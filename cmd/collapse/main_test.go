package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func responseSchema(t *testing.T, doc *openapi3.T, path string) *openapi3.SchemaRef {
	t.Helper()
	item := doc.Paths.Value(path)
	require.NotNil(t, item, path)
	resp := item.Get.Responses.Status(200)
	require.NotNil(t, resp, path)
	mt := resp.Value.Content.Get("application/json")
	require.NotNil(t, mt, path)
	return mt.Schema
}

func TestRun(t *testing.T) {
	t.Run("happy-path", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "out", "openapi.json")

		code, stdout, stderr := runCmd(filepath.Join("testdata", "paginated.json"), dst)
		require.Equal(t, 0, code, stderr)

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], `"/items" get 200 application/json`)
		assert.Contains(t, lines[0], "#/components/schemas/PaginatedResult_Item")
		assert.Contains(t, lines[1], `"/pages" get 200 application/json`)
		assert.Contains(t, lines[1], "#/components/schemas/PaginatedResult_Page")
		assert.Equal(t, "Transformed document saved to "+dst, lines[2])

		// the union without paginated members is reported as dropped
		assert.Contains(t, stderr, "level=WARN")
		assert.Contains(t, stderr, "path=/mixed")

		doc, err := openapi3.NewLoader().LoadFromFile(dst)
		require.NoError(t, err)

		items := responseSchema(t, doc, "/items")
		assert.Equal(t, "#/components/schemas/PaginatedResult_Item", items.Ref)
		require.NotNil(t, items.Value)
		assert.Contains(t, items.Value.Properties, "total_count")

		pages := responseSchema(t, doc, "/pages")
		assert.Equal(t, "#/components/schemas/PaginatedResult_Page", pages.Ref)

		mixed := responseSchema(t, doc, "/mixed")
		assert.Empty(t, mixed.Ref)
		require.NotNil(t, mixed.Value)
		assert.Empty(t, mixed.Value.AnyOf)

		composed := responseSchema(t, doc, "/composed")
		require.NotNil(t, composed.Value)
		require.Len(t, composed.Value.AllOf, 1)
		assert.Equal(t, "#/components/schemas/PaginatedResult_Item", composed.Value.AllOf[0].Ref)

		res, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Contains(t, string(res), "\"$ref\": \"#/components/schemas/PaginatedResult_Page\",\n                  \"type\": \"array\"")
		assert.Contains(t, string(res), `"example": 9.90`)
		assert.NotContains(t, string(res), "anyOf")
	})

	t.Run("scenario", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "in.json")
		dst := filepath.Join(dir, "out.json")
		require.NoError(t, os.WriteFile(src, []byte(`{"paths": {"/items": {"get": {"responses": {"200": {"content": {"application/json": {"schema": {"anyOf": [{"$ref": "#/components/schemas/PaginatedResult_Item"}, {"$ref": "#/components/schemas/Error"}]}}}}}}}}}`), 0o644))

		code, _, stderr := runCmd(src, dst)
		require.Equal(t, 0, code, stderr)

		expected := `{
  "paths": {
    "/items": {
      "get": {
        "responses": {
          "200": {
            "content": {
              "application/json": {
                "schema": {
                  "$ref": "#/components/schemas/PaginatedResult_Item"
                }
              }
            }
          }
        }
      }
    }
  }
}
`
		res, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, expected, string(res))
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		once := filepath.Join(dir, "once.json")
		twice := filepath.Join(dir, "twice.json")

		code, _, _ := runCmd(filepath.Join("testdata", "paginated.json"), once)
		require.Equal(t, 0, code)

		code, stdout, _ := runCmd(once, twice)
		require.Equal(t, 0, code)
		assert.Equal(t, "Transformed document saved to "+twice+"\n", stdout)

		first, err := os.ReadFile(once)
		require.NoError(t, err)
		second, err := os.ReadFile(twice)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})

	t.Run("yaml-output", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "openapi.yaml")

		code, _, stderr := runCmd(filepath.Join("testdata", "paginated.json"), dst)
		require.Equal(t, 0, code, stderr)

		res, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Contains(t, string(res), "$ref: '#/components/schemas/PaginatedResult_Item'")

		doc, err := openapi3.NewLoader().LoadFromFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "#/components/schemas/PaginatedResult_Page", responseSchema(t, doc, "/pages").Ref)
	})

	t.Run("help", func(t *testing.T) {
		code, stdout, stderr := runCmd("-help")
		assert.Equal(t, 0, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Usage:")

		code, _, _ = runCmd("-h")
		assert.Equal(t, 0, code)
	})

	t.Run("help-after-arguments", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join("testdata", "paginated.json")

		for _, args := range [][]string{
			{src, "-h"},
			{src, filepath.Join(dir, "out.json"), "--help"},
			{"-help", src},
		} {
			code, stdout, stderr := runCmd(args...)
			assert.Equal(t, 0, code, args)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Usage:")
		}

		assert.NoFileExists(t, "-h")
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("wrong-number-of-arguments", func(t *testing.T) {
		dir := t.TempDir()

		for _, args := range [][]string{
			nil,
			{filepath.Join(dir, "in.json")},
			{filepath.Join(dir, "in.json"), filepath.Join(dir, "out.json"), filepath.Join(dir, "extra.json")},
		} {
			code, stdout, stderr := runCmd(args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "expected exactly two arguments")
			assert.Contains(t, stderr, "Usage:")
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("unknown-flag", func(t *testing.T) {
		code, _, stderr := runCmd("-pretty", "in.json", "out.json")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "flag provided but not defined")
	})

	t.Run("missing-input", func(t *testing.T) {
		dir := t.TempDir()
		dst := filepath.Join(dir, "out.json")

		code, _, stderr := runCmd(filepath.Join(dir, "missing.json"), dst)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "Error reading input file")
		assert.NoFileExists(t, dst)
	})

	t.Run("invalid-input", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "in.json")
		dst := filepath.Join(dir, "out.json")
		require.NoError(t, os.WriteFile(src, []byte(`{"paths": {"/items": `), 0o644))

		code, _, stderr := runCmd(src, dst)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "invalid document")
		assert.NoFileExists(t, dst)
	})

	t.Run("unwritable-output", func(t *testing.T) {
		dir := t.TempDir()
		parent := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))

		code, _, stderr := runCmd(filepath.Join("testdata", "paginated.json"), filepath.Join(parent, "out.json"))
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "Error writing output file")
	})
}
