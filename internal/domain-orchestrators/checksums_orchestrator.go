package orchestrators

import (
	"context"
	"fmt"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/gateways"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/repositories"
	"github.com/hashicorp/setup-hc-releases/internal/domain/services"
)

// ChecksumsOrchestrator computes catalog checksum entries from published releases
type ChecksumsOrchestrator struct {
	catalogs    repositories.CatalogRepository
	releases    gateways.ReleaseGateway
	checksums   gateways.ChecksumVerifier
	logger      interfaces.Logger
	downloadDir string
}

// NewChecksumsOrchestrator creates a new checksums orchestrator
func NewChecksumsOrchestrator(
	catalogs repositories.CatalogRepository,
	releases gateways.ReleaseGateway,
	checksums gateways.ChecksumVerifier,
	logger interfaces.Logger,
	downloadDir string,
) *ChecksumsOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ChecksumsOrchestrator{
		catalogs:    catalogs,
		releases:    releases,
		checksums:   checksums,
		logger:      logger,
		downloadDir: downloadDir,
	}
}

// ChecksumsResult holds the digests of one release, in catalog layout
type ChecksumsResult struct {
	Version   string
	Checksums map[entities.OperatingSystem]map[entities.Architecture]string
	// Changed lists platforms whose digest differs from the loaded catalog
	Changed []entities.PlatformKey
}

// GenerateChecksums downloads the asset of every supported platform for
// version (the catalog's latest when empty) and returns their SHA-256 digests
func (o *ChecksumsOrchestrator) GenerateChecksums(ctx context.Context, product, version string) (*ChecksumsResult, error) {
	catalog, err := o.catalogs.GetCatalog(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	svc := services.NewCatalogService(catalog)
	version = services.Resolve(version, catalog.LatestVersion)

	release, err := o.releases.GetReleaseByTag(ctx, catalog.Owner, catalog.Repo, svc.Tag(version))
	if err != nil {
		return nil, err
	}

	result := &ChecksumsResult{
		Version:   version,
		Checksums: make(map[entities.OperatingSystem]map[entities.Architecture]string),
	}

	for _, platform := range svc.SupportedPlatforms() {
		asset, err := services.SelectAsset(release, svc.AssetName(version, platform))
		if err != nil {
			return nil, err
		}

		artifact, err := o.releases.DownloadReleaseAsset(ctx, catalog.Owner, catalog.Repo, asset, o.downloadDir)
		if err != nil {
			return nil, err
		}

		sum, err := o.checksums.CalculateChecksum(artifact.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate checksum of %s: %w", asset.Name, err)
		}

		if result.Checksums[platform.OS] == nil {
			result.Checksums[platform.OS] = make(map[entities.Architecture]string)
		}
		result.Checksums[platform.OS][platform.Arch] = sum

		if known, ok := svc.ReleaseAssetChecksum(version, platform); ok && known != sum {
			o.logger.Warn("Computed checksum differs from catalog",
				interfaces.F("platform", platform.String()),
				interfaces.F("catalog", known),
				interfaces.F("computed", sum))
			result.Changed = append(result.Changed, platform)
		}

		o.logger.Debug("Computed checksum", interfaces.F("asset", asset.Name), interfaces.F("checksum", sum))
	}

	return result, nil
}
