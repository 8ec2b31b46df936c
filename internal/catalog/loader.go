package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
	"github.com/osse101/BrandishGacha_Go/internal/validation"
)

//go:embed catalog.schema.json
var schemaJSON []byte

// Loader reads catalog files: YAML decode, schema check, typed decode, then
// semantic validation.
type Loader struct {
	schemas validation.SchemaValidator
}

// NewLoader creates a loader with the embedded catalog schema registered.
func NewLoader() (*Loader, error) {
	v := validation.NewSchemaValidator()
	if err := v.Register(SchemaName, schemaJSON); err != nil {
		return nil, fmt.Errorf("failed to register catalog schema: %w", err)
	}
	return &Loader{schemas: v}, nil
}

// Load reads and validates the catalog at path.
func (l *Loader) Load(ctx context.Context, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	log := logger.FromContext(ctx)
	log.Info(LogMsgCatalogLoaded,
		"path", path,
		"version", c.Version(),
		"pools", len(c.order),
		"items", len(c.items))
	if gaps := c.Gaps(); len(gaps) > 0 {
		log.Warn(LogMsgCatalogGaps, "rarities", gaps, "data_integrity", true)
	}
	return c, nil
}

// Parse validates and builds a catalog from YAML bytes.
func (l *Loader) Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if err := l.schemas.ValidateDocument(raw, SchemaName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return New(doc)
}
