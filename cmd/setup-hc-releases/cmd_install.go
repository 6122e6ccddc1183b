package main

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-githubactions"

	"github.com/hashicorp/setup-hc-releases/internal/domain-adapters/gateways"
	orchestrators "github.com/hashicorp/setup-hc-releases/internal/domain-orchestrators"
	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/repositories"
	"github.com/hashicorp/setup-hc-releases/internal/domain/services"
	"github.com/hashicorp/setup-hc-releases/internal/external-adapters/actions"
	"github.com/hashicorp/setup-hc-releases/internal/external-adapters/yaml"
)

func runInstall(ctx context.Context, action *githubactions.Action, flags *installOptions) error {
	env := actions.NewEnvironment(action)
	logger := actions.NewLogger(action)

	opts, err := flags.resolve(env)
	if err != nil {
		return err
	}
	action.AddMask(opts.githubToken)

	platform, err := services.HostPlatform()
	if err != nil {
		return err
	}

	catalogs, err := yaml.NewCatalogRepository(opts.catalog)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}

	// The platform guard precedes the key import, which may fetch a URL
	if err := ensurePlatform(ctx, catalogs, opts.product, platform); err != nil {
		return err
	}

	verifiers, err := gateways.NewSignatureVerifiers(ctx, opts.signingKey, opts.minisignKey)
	if err != nil {
		return err
	}

	downloadDir, toolCacheDir := runnerDirs(env)

	orch := orchestrators.NewInstallOrchestrator(
		catalogs,
		gateways.NewHTTPGitHubGateway(opts.githubToken,
			gateways.WithBaseURL(opts.apiURL),
			gateways.WithLogger(logger)),
		gateways.NewChecksumVerifier(),
		gateways.NewArchiveExtractor(logger),
		gateways.NewProcessRunner(),
		env,
		logger,
		orchestrators.InstallOrchestratorConfig{
			DownloadDir:        downloadDir,
			ToolCacheDir:       toolCacheDir,
			SignatureVerifiers: verifiers,
		},
	)

	_, err = orch.Install(ctx, orchestrators.InstallRequest{
		Product:  opts.product,
		Version:  opts.version,
		Checksum: opts.versionChecksum,
		Platform: platform,
	})
	return err
}

// ensurePlatform fails when the product publishes no artifact for platform
func ensurePlatform(ctx context.Context, catalogs repositories.CatalogRepository, product string, platform entities.PlatformKey) error {
	catalog, err := catalogs.GetCatalog(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	return services.NewCatalogService(catalog).EnsureSupportedPlatform(platform)
}
