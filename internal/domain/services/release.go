package services

import (
	"fmt"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

// SelectAsset returns the asset whose name is exactly assetName.
// Near matches are never picked.
func SelectAsset(release *entities.Release, assetName string) (entities.ReleaseAsset, error) {
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			return asset, nil
		}
	}

	return entities.ReleaseAsset{}, fmt.Errorf("%w: %s (tag %s)", entities.ErrAssetNotFound, assetName, release.TagName)
}

// FindAsset is SelectAsset for optional assets
func FindAsset(release *entities.Release, assetName string) (entities.ReleaseAsset, bool) {
	asset, err := SelectAsset(release, assetName)
	return asset, err == nil
}
