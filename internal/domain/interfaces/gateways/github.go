// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"
	"io"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
)

// ReleaseGateway defines read operations against a release hosting API
type ReleaseGateway interface {
	// GetReleaseByTag retrieves a release and its assets by tag name
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*entities.Release, error)

	// DownloadReleaseAsset writes the asset content to destDir/asset.Name
	DownloadReleaseAsset(ctx context.Context, owner, repo string, asset entities.ReleaseAsset, destDir string) (*entities.DownloadedArtifact, error)
}

// BinaryFetcher fetches raw binary content. Implementations may use a typed
// API client or a plain HTTP request; callers only see the body.
type BinaryFetcher interface {
	// FetchBinary returns the body of url requested as application/octet-stream.
	// The caller must close the returned reader.
	FetchBinary(ctx context.Context, url string) (io.ReadCloser, error)
}
