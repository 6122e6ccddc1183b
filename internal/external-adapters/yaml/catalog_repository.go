package yaml

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

//go:embed catalogs/*.yml catalogs/*.json
var catalogFS embed.FS

// CatalogRepository implements repositories.CatalogRepository using the
// catalogs embedded in the binary, optionally overlaid with a local file
type CatalogRepository struct {
	parser      *CatalogParser
	overlayPath string
}

// NewCatalogRepository creates a new YAML-based catalog repository.
// overlayPath may be empty; when set, that file is merged over every catalog.
func NewCatalogRepository(overlayPath string) (*CatalogRepository, error) {
	parser, err := NewCatalogParser()
	if err != nil {
		return nil, err
	}
	return &CatalogRepository{
		parser:      parser,
		overlayPath: overlayPath,
	}, nil
}

// GetCatalog retrieves the catalog of a product by name
func (r *CatalogRepository) GetCatalog(_ context.Context, product string) (*entities.Catalog, error) {
	data, err := catalogFS.ReadFile("catalogs/" + product + ".yml")
	if err != nil {
		return nil, fmt.Errorf("catalog not found: %s", product)
	}

	docs := [][]byte{data}
	if r.overlayPath != "" {
		//nolint:gosec // G304: overlay path is user-provided configuration
		overlay, err := os.ReadFile(r.overlayPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog overlay %s: %w", r.overlayPath, err)
		}
		docs = append(docs, overlay)
	}

	catalog, err := r.parser.Parse(docs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", product, err)
	}
	if catalog.Product != product {
		return nil, fmt.Errorf("%w: catalog %s declares product %q", entities.ErrInvalidCatalog, product, catalog.Product)
	}

	return catalog, nil
}

// ListProducts returns the names of all embedded catalogs
func (r *CatalogRepository) ListProducts() ([]string, error) {
	entries, err := fs.ReadDir(catalogFS, "catalogs")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogs: %w", err)
	}

	products := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Skip non-YAML files
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}
		products = append(products, strings.TrimSuffix(entry.Name(), ".yml"))
	}
	sort.Strings(products)

	return products, nil
}
