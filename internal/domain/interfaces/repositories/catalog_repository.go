// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

// CatalogRepository provides the static product catalog
type CatalogRepository interface {
	// GetCatalog returns the catalog for the named product
	GetCatalog(ctx context.Context, product string) (*entities.Catalog, error)
}
