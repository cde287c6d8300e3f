package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "score"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"score": {"type": "number"}
	}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateJSON_Valid(t *testing.T) {
	schema := writeFile(t, "point.schema.json", pointSchema)
	doc := writeFile(t, "point.json", `{"id": 3, "score": 0.5}`)

	assert.NoError(t, ValidateJSON(schema, doc))
}

func TestValidateJSON_MissingField(t *testing.T) {
	schema := writeFile(t, "point.schema.json", pointSchema)
	doc := writeFile(t, "point.json", `{"id": 3}`)

	err := ValidateJSON(schema, doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, err.Error(), "score")
}

func TestValidateDocument_WrongType(t *testing.T) {
	schema := writeFile(t, "point.schema.json", pointSchema)

	err := ValidateDocument(schema, []byte(`{"id": "three", "score": 1}`))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "id", validationErr.Errors[0].Field)
}

func TestValidateDocument_Malformed(t *testing.T) {
	schema := writeFile(t, "point.schema.json", pointSchema)

	err := ValidateDocument(schema, []byte(`{not json`))
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestValidateJSON_NotFound(t *testing.T) {
	schema := writeFile(t, "point.schema.json", pointSchema)

	err := ValidateJSON("nonexistent.schema.json", schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schema, "nonexistent.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(pointSchema, `{"id": 1, "score": 2}`))
	assert.Error(t, ValidateJSONString(pointSchema, `{"id": 0, "score": 2}`))
}

func TestResolveSchemaPath(t *testing.T) {
	// tests run from internal/schemas, two levels below the repository root
	path := ResolveSchemaPath(ArticlesSchema)
	require.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))

	assert.Empty(t, ResolveSchemaPath("schemas/does-not-exist.schema.json"))
}
