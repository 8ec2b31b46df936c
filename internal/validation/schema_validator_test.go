package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poolSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"pity": {
			"type": "object",
			"properties": {
				"soft": {"type": "integer", "minimum": 1}
			},
			"required": ["soft"]
		},
		"scope": {"enum": ["all", "category", "event"]}
	},
	"required": ["id", "pity"]
}`

func newPoolValidator(t *testing.T) SchemaValidator {
	t.Helper()
	v := NewSchemaValidator()
	require.NoError(t, v.Register("pool.schema.json", []byte(poolSchema)))
	return v
}

func TestSchemaValidator_ValidateBytes(t *testing.T) {
	v := newPoolValidator(t)

	tests := []struct {
		name     string
		data     string
		errorMsg string
	}{
		{"valid", `{"id": "standard", "pity": {"soft": 50}, "scope": "all"}`, ""},
		{"missing required field", `{"pity": {"soft": 50}}`, "required"},
		{"nested constraint", `{"id": "standard", "pity": {"soft": 0}}`, "/pity/soft"},
		{"wrong type", `{"id": 7, "pity": {"soft": 1}}`, "/id"},
		{"enum", `{"id": "x", "pity": {"soft": 1}, "scope": "some"}`, "/scope"},
		{"invalid JSON", `{"id": }`, "parse JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(tt.data), "pool.schema.json")
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestSchemaValidator_ValidateDocument(t *testing.T) {
	v := newPoolValidator(t)

	// shapes produced by a YAML decoder
	ok := map[string]any{"id": "standard", "pity": map[string]any{"soft": 50}}
	assert.NoError(t, v.ValidateDocument(ok, "pool.schema.json"))

	bad := map[string]any{"id": "standard", "pity": map[string]any{"soft": -1}}
	err := v.ValidateDocument(bad, "pool.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgValidationFailed)

	assert.Error(t, v.ValidateDocument(make(chan int), "pool.schema.json"))
}

func TestSchemaValidator_Register(t *testing.T) {
	v := newPoolValidator(t)

	err := v.Register("pool.schema.json", []byte(poolSchema))
	assert.ErrorContains(t, err, ErrMsgSchemaExists)

	assert.Error(t, v.Register("broken.schema.json", []byte(`{"type": `)))
	assert.Error(t, v.Register("bad-keyword.schema.json", []byte(`{"type": "no-such-type"}`)))
}

func TestSchemaValidator_UnknownSchema(t *testing.T) {
	v := NewSchemaValidator()

	err := v.ValidateBytes([]byte(`{}`), "missing.schema.json")
	assert.ErrorContains(t, err, ErrMsgSchemaNotFound)
}

func TestSchemaValidator_ReportsEveryProblem(t *testing.T) {
	v := newPoolValidator(t)

	err := v.ValidateBytes([]byte(`{"id": 7, "pity": {"soft": 0}, "scope": "some"}`), "pool.schema.json")
	require.Error(t, err)

	lines := strings.Split(err.Error(), "\n")
	assert.Equal(t, ErrMsgValidationFailed+":", lines[0])
	assert.Len(t, lines[1:], 3, "one line per failing location")
	assert.Contains(t, err.Error(), "/id [type]")
	assert.Contains(t, err.Error(), "/scope [enum]")
}
