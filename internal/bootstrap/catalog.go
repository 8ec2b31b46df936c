package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/BrandishGacha_Go/internal/catalog"
)

// LoadCatalog reads and validates the catalog file. Rarities without any item
// are reported as data integrity warnings; pulls on them award placeholders.
func LoadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	loader, err := catalog.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}

	cat, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}

	for _, r := range cat.Gaps() {
		slog.Warn(LogMsgCatalogGap, "rarity", r.String(), "data_integrity", true)
	}

	slog.Info(LogMsgCatalogLoaded,
		"path", path,
		"version", cat.Version(),
		"pools", len(cat.Pools()),
		"items", len(cat.Items()))
	return cat, nil
}
