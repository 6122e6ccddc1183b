package services

import (
	"context"
	"fmt"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/gateways"
)

// IntegrityService applies the checksum policy to downloaded artifacts
type IntegrityService struct {
	verifier gateways.ChecksumVerifier
	logger   interfaces.Logger
}

// NewIntegrityService creates an integrity service
func NewIntegrityService(verifier gateways.ChecksumVerifier, logger interfaces.Logger) *IntegrityService {
	return &IntegrityService{
		verifier: verifier,
		logger:   logger,
	}
}

// VerifyReleaseAsset checks artifact against expectedChecksum.
// An empty expectedChecksum skips verification with a warning; unknown
// checksums for not yet catalogued versions must not block installation.
func (s *IntegrityService) VerifyReleaseAsset(ctx context.Context, artifact *entities.DownloadedArtifact, expectedChecksum string) error {
	if expectedChecksum == "" {
		s.logger.Warn("Automatic checksum unknown and not configured in workflow, skipping checksum verification",
			interfaces.F("asset", artifact.Asset.Name))
		return nil
	}

	s.logger.Info("Verifying release asset",
		interfaces.F("path", artifact.Path),
		interfaces.F("checksum", expectedChecksum))

	if err := s.verifier.VerifyChecksum(ctx, artifact.Path, expectedChecksum); err != nil {
		s.logger.Error("Unable to verify release asset",
			interfaces.F("path", artifact.Path),
			interfaces.F("error", err))
		return fmt.Errorf("failed to verify release asset %s: %w", artifact.Asset.Name, err)
	}

	return nil
}
