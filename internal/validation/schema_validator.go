package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SchemaValidator checks documents against JSON schemas registered by name.
type SchemaValidator interface {
	Register(name string, schema []byte) error
	ValidateBytes(data []byte, schemaName string) error
	ValidateDocument(doc any, schemaName string) error
}

type validator struct {
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
}

func NewSchemaValidator() SchemaValidator {
	return &validator{
		compiler: jsonschema.NewCompiler(),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// Register compiles schema under name. Registering a name twice is an error.
func (v *validator) Register(name string, schema []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.schemas[name]; ok {
		return fmt.Errorf("%s: %s", ErrMsgSchemaExists, name)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	if err := v.compiler.AddResource(name, doc); err != nil {
		return fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := v.compiler.Compile(name)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	v.schemas[name] = compiled
	return nil
}

// ValidateBytes validates JSON data against a registered schema
func (v *validator) ValidateBytes(data []byte, schemaName string) error {
	schema, err := v.lookup(schemaName)
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse JSON data: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateDocument validates an already decoded document, such as the output
// of a YAML decoder. The document is normalized through JSON first.
func (v *validator) ValidateDocument(doc any, schemaName string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return v.ValidateBytes(data, schemaName)
}

func (v *validator) lookup(name string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	schema, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%s: %s", ErrMsgSchemaNotFound, name)
	}
	return schema, nil
}

// problemPrinter renders jsonschema error kinds in English.
var problemPrinter = message.NewPrinter(language.English)

// formatValidationError flattens a validation tree into one line per failing
// location.
func formatValidationError(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("%s: %w", ErrMsgValidationFailed, err)
	}
	var problems []string
	for _, leaf := range leaves(verr, nil) {
		problems = append(problems, describe(leaf))
	}
	return fmt.Errorf("%s:\n%s", ErrMsgValidationFailed, strings.Join(problems, "\n"))
}

// leaves collects the errors without causes; inner nodes only summarize.
func leaves(err *jsonschema.ValidationError, acc []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return append(acc, err)
	}
	for _, cause := range err.Causes {
		acc = leaves(cause, acc)
	}
	return acc
}

func describe(err *jsonschema.ValidationError) string {
	at := "/" + strings.Join(err.InstanceLocation, "/")
	if err.ErrorKind == nil {
		return "  - " + at
	}
	keyword := strings.Join(err.ErrorKind.KeywordPath(), ".")
	return fmt.Sprintf("  - %s [%s] %s", at, keyword, err.ErrorKind.LocalizedString(problemPrinter))
}
