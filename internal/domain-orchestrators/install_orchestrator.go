// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/gateways"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/repositories"
	"github.com/hashicorp/setup-hc-releases/internal/domain/services"
)

// Checksum sources reported in InstallResult
const (
	ChecksumSourceWorkflow = "workflow"
	ChecksumSourceCatalog  = "catalog"
	ChecksumSourceSigned   = "signed checksums"
)

// VersionOutput is the action output carrying the installed version
const VersionOutput = "version"

// InstallOrchestrator coordinates resolving, downloading, verifying and
// installing a released executable
type InstallOrchestrator struct {
	catalogs   repositories.CatalogRepository
	releases   gateways.ReleaseGateway
	integrity  *services.IntegrityService
	extractor  gateways.ArchiveExtractor
	runner     gateways.ProcessRunner
	env        interfaces.Environment
	signatures []gateways.SignatureVerifier
	logger     interfaces.Logger
	config     InstallOrchestratorConfig
}

// InstallOrchestratorConfig holds configuration for the orchestrator
type InstallOrchestratorConfig struct {
	// DownloadDir receives downloaded release assets
	DownloadDir string
	// ToolCacheDir is the root under which archives are extracted
	ToolCacheDir string
	// SignatureVerifiers enable the signed checksums fallback when non-empty
	SignatureVerifiers []gateways.SignatureVerifier
}

// NewInstallOrchestrator creates a new install orchestrator
func NewInstallOrchestrator(
	catalogs repositories.CatalogRepository,
	releases gateways.ReleaseGateway,
	checksums gateways.ChecksumVerifier,
	extractor gateways.ArchiveExtractor,
	runner gateways.ProcessRunner,
	env interfaces.Environment,
	logger interfaces.Logger,
	config InstallOrchestratorConfig,
) *InstallOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	if config.DownloadDir == "" {
		config.DownloadDir = os.TempDir()
	}
	if config.ToolCacheDir == "" {
		config.ToolCacheDir = config.DownloadDir
	}

	return &InstallOrchestrator{
		catalogs:   catalogs,
		releases:   releases,
		integrity:  services.NewIntegrityService(checksums, logger),
		extractor:  extractor,
		runner:     runner,
		env:        env,
		signatures: config.SignatureVerifiers,
		logger:     logger,
		config:     config,
	}
}

// InstallRequest describes one installation
type InstallRequest struct {
	Product string
	// Version is optional; the catalog's latest version is used when empty
	Version string
	// Checksum overrides every other checksum source when set
	Checksum string
	Platform entities.PlatformKey
}

// InstallResult contains the result of an install operation
type InstallResult struct {
	Tool           *entities.InstalledTool
	Artifact       *entities.DownloadedArtifact
	Checksum       string
	ChecksumSource string
	TotalDuration  time.Duration
}

// Install executes the complete install workflow
func (o *InstallOrchestrator) Install(ctx context.Context, req InstallRequest) (*InstallResult, error) {
	startTime := time.Now()
	result := &InstallResult{}

	// Step 1: Load catalog and fail fast on unpublished platforms
	catalog, err := o.catalogs.GetCatalog(ctx, req.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	svc := services.NewCatalogService(catalog)

	if err := svc.EnsureSupportedPlatform(req.Platform); err != nil {
		return nil, err
	}

	if req.Checksum != "" && !services.IsSHA256Hex(strings.TrimSpace(req.Checksum)) {
		return nil, fmt.Errorf("invalid checksum %q: expected 64 hex characters", req.Checksum)
	}

	version := services.Resolve(req.Version, catalog.LatestVersion)
	o.logger.Info("Installing release",
		interfaces.F("product", catalog.Product),
		interfaces.F("version", version),
		interfaces.F("platform", req.Platform.String()))

	// Step 2: Resolve release and asset
	release, err := o.releases.GetReleaseByTag(ctx, catalog.Owner, catalog.Repo, svc.Tag(version))
	if err != nil {
		return nil, err
	}

	asset, err := services.SelectAsset(release, svc.AssetName(version, req.Platform))
	if err != nil {
		return nil, err
	}

	// Step 3: Resolve expected checksum
	result.Checksum, result.ChecksumSource, err = o.resolveChecksum(ctx, svc, release, version, asset.Name, req)
	if err != nil {
		return nil, err
	}

	// Step 4: Download and verify
	artifact, err := o.releases.DownloadReleaseAsset(ctx, catalog.Owner, catalog.Repo, asset, o.config.DownloadDir)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact

	if err := o.integrity.VerifyReleaseAsset(ctx, artifact, result.Checksum); err != nil {
		return nil, err
	}

	// Step 5: Extract and expose on PATH
	installDir, err := o.extractor.Extract(ctx, artifact.Path, o.config.ToolCacheDir)
	if err != nil {
		return nil, err
	}

	executable, err := locateExecutable(installDir, catalog.Executable, req.Platform.OS)
	if err != nil {
		return nil, err
	}

	if err := o.env.AddPath(installDir); err != nil {
		return nil, fmt.Errorf("failed to add install directory to PATH: %w", err)
	}

	// Step 6: Probe and report the installed version
	installed, err := o.probeVersion(ctx, executable)
	if err != nil {
		return nil, err
	}

	if err := o.env.SetOutput(VersionOutput, installed); err != nil {
		return nil, fmt.Errorf("failed to set output: %w", err)
	}

	result.Tool = &entities.InstalledTool{
		Name:       catalog.Executable,
		Version:    installed,
		Platform:   req.Platform,
		Dir:        installDir,
		Executable: executable,
	}
	result.TotalDuration = time.Since(startTime)

	o.logger.Info("Installed release",
		interfaces.F("version", installed),
		interfaces.F("dir", installDir),
		interfaces.F("duration", result.TotalDuration.Round(time.Millisecond).String()))

	return result, nil
}

// resolveChecksum applies override > catalog > signed checksums precedence.
// An empty checksum with a nil error means verification is skipped.
func (o *InstallOrchestrator) resolveChecksum(ctx context.Context, svc *services.CatalogService, release *entities.Release, version, assetName string, req InstallRequest) (string, string, error) {
	tableSum, _ := svc.ReleaseAssetChecksum(version, req.Platform)

	switch checksum := services.Resolve(req.Checksum, tableSum); {
	case checksum == "":
	case strings.TrimSpace(req.Checksum) != "":
		return checksum, ChecksumSourceWorkflow, nil
	default:
		return checksum, ChecksumSourceCatalog, nil
	}

	if len(o.signatures) == 0 {
		return "", "", nil
	}

	checksum, err := o.signedChecksum(ctx, svc, release, version, assetName)
	if err != nil {
		return "", "", err
	}
	if checksum == "" {
		return "", "", nil
	}
	return checksum, ChecksumSourceSigned, nil
}

// signedChecksum reads the asset digest from the release's SHA256SUMS file
// after verifying every configured signature over it
func (o *InstallOrchestrator) signedChecksum(ctx context.Context, svc *services.CatalogService, release *entities.Release, version, assetName string) (string, error) {
	catalog := svc.Catalog()
	sumsName := svc.ChecksumsAssetName(version)

	sumsAsset, ok := services.FindAsset(release, sumsName)
	if !ok {
		o.logger.Warn("Release has no checksums file", interfaces.F("asset", sumsName))
		return "", nil
	}

	type signedBy struct {
		verifier gateways.SignatureVerifier
		asset    entities.ReleaseAsset
	}
	var signatures []signedBy
	for _, v := range o.signatures {
		if sigAsset, ok := services.FindAsset(release, sumsName+v.SignatureSuffix()); ok {
			signatures = append(signatures, signedBy{verifier: v, asset: sigAsset})
		}
	}
	if len(signatures) == 0 {
		return "", fmt.Errorf("%w: no signature for %s in release %s", entities.ErrSignatureInvalid, sumsName, release.TagName)
	}

	sums, err := o.releases.DownloadReleaseAsset(ctx, catalog.Owner, catalog.Repo, sumsAsset, o.config.DownloadDir)
	if err != nil {
		return "", err
	}

	for _, s := range signatures {
		sig, err := o.releases.DownloadReleaseAsset(ctx, catalog.Owner, catalog.Repo, s.asset, o.config.DownloadDir)
		if err != nil {
			return "", err
		}
		if err := verifyFileSignature(s.verifier, sums.Path, sig.Path); err != nil {
			o.logger.Error("Unable to verify checksums signature",
				interfaces.F("scheme", s.verifier.Name()),
				interfaces.F("error", err))
			return "", fmt.Errorf("failed to verify %s: %w", sumsName, err)
		}
		o.logger.Info("Verified checksums signature",
			interfaces.F("asset", sumsName),
			interfaces.F("scheme", s.verifier.Name()))
	}

	//nolint:gosec // G304: path returned by the release gateway
	data, err := os.ReadFile(sums.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", sumsName, err)
	}

	checksum, err := services.ChecksumFromSums(data, assetName)
	if err != nil {
		o.logger.Warn("Signed checksums file does not list release asset",
			interfaces.F("asset", assetName),
			interfaces.F("error", err))
		return "", nil
	}

	return checksum, nil
}

func verifyFileSignature(v gateways.SignatureVerifier, contentPath, sigPath string) error {
	//nolint:gosec // G304: paths returned by the release gateway
	content, err := os.Open(contentPath)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on read-only file
	defer content.Close()

	//nolint:gosec // G304: paths returned by the release gateway
	sig, err := os.Open(sigPath)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on read-only file
	defer sig.Close()

	return v.VerifyDetached(content, sig)
}

// locateExecutable finds the extracted executable and makes sure it can run
func locateExecutable(dir, name string, goos entities.OperatingSystem) (string, error) {
	if goos == entities.OSWindows {
		name += ".exe"
	}
	path := filepath.Join(dir, name)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("executable %s not found in release asset: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("executable %s in release asset is not a regular file", name)
	}

	if goos != entities.OSWindows && info.Mode().Perm() != 0755 {
		//nolint:gosec // G302: executables must be runnable
		if err := os.Chmod(path, 0755); err != nil {
			return "", fmt.Errorf("failed to make %s executable: %w", name, err)
		}
	}

	return path, nil
}

// probeVersion runs "<executable> version" and parses the reported version
func (o *InstallOrchestrator) probeVersion(ctx context.Context, executable string) (string, error) {
	res, err := o.runner.Run(ctx, executable, "version")
	if err != nil {
		return "", err
	}

	// Any stderr output fails the check, whitespace included
	if res.Stderr != "" {
		return "", fmt.Errorf("%w: %q", entities.ErrVersionCheckFailed, strings.TrimSpace(res.Stderr))
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s exited with code %d", entities.ErrVersionCheckFailed, filepath.Base(executable), res.ExitCode)
	}

	version, err := services.ParseVersionOutput(res.Stdout)
	if err != nil {
		return "", err
	}

	o.logger.Debug("Probed installed version", interfaces.F("version", version))
	return version, nil
}
