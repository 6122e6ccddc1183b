package services

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

// CatalogService answers questions about a loaded product catalog
type CatalogService struct {
	catalog *entities.Catalog
}

// NewCatalogService creates a catalog service over an immutable catalog
func NewCatalogService(catalog *entities.Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// Catalog returns the underlying catalog
func (s *CatalogService) Catalog() *entities.Catalog {
	return s.catalog
}

// EnsureSupportedPlatform fails fast when no artifact is published for the platform
func (s *CatalogService) EnsureSupportedPlatform(platform entities.PlatformKey) error {
	archs, ok := s.catalog.Platforms[platform.OS]
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrUnsupportedOS, platform.OS)
	}

	if !slices.Contains(archs, platform.Arch) {
		return fmt.Errorf("%w: %s (%s)", entities.ErrUnsupportedOSArchitecture, platform.Arch, platform.OS)
	}

	return nil
}

// SupportedPlatforms lists every published platform in a stable order
func (s *CatalogService) SupportedPlatforms() []entities.PlatformKey {
	var platforms []entities.PlatformKey
	for goos, archs := range s.catalog.Platforms {
		for _, arch := range archs {
			platforms = append(platforms, entities.PlatformKey{OS: goos, Arch: arch})
		}
	}

	slices.SortFunc(platforms, func(a, b entities.PlatformKey) int {
		if c := cmp.Compare(a.OS, b.OS); c != 0 {
			return c
		}
		return cmp.Compare(a.Arch, b.Arch)
	})

	return platforms
}

// ReleaseAssetChecksum returns the known-good digest for a release asset.
// The boolean is false when any level of the lookup is missing.
func (s *CatalogService) ReleaseAssetChecksum(version string, platform entities.PlatformKey) (string, bool) {
	byOS, ok := s.catalog.Checksums[version]
	if !ok {
		return "", false
	}

	byArch, ok := byOS[platform.OS]
	if !ok {
		return "", false
	}

	sum, ok := byArch[platform.Arch]
	if !ok || sum == "" {
		return "", false
	}

	return sum, true
}

// Tag returns the release tag for a version
func (s *CatalogService) Tag(version string) string {
	return "v" + version
}

// AssetName returns the archive name published for a version and platform
func (s *CatalogService) AssetName(version string, platform entities.PlatformKey) string {
	return fmt.Sprintf("%s_%s_%s_%s.zip", s.catalog.Executable, version, platform.OS, platform.Arch)
}

// ChecksumsAssetName returns the name of the release's SHA256SUMS file
func (s *CatalogService) ChecksumsAssetName(version string) string {
	return fmt.Sprintf("%s_%s_SHA256SUMS", s.catalog.Executable, version)
}
