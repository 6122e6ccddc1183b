package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hashicorp/setup-hc-releases/internal/domain-adapters/gateways"
	"github.com/hashicorp/setup-hc-releases/internal/domain/services"
	"github.com/hashicorp/setup-hc-releases/internal/external-adapters/actions"
)

// connectionOptions are shared by every command talking to GitHub
type connectionOptions struct {
	product     string
	githubToken string
	apiURL      string
	catalog     string
}

func (o *connectionOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.product, "product", defaultProduct, "catalog of the tool to install")
	flags.StringVar(&o.githubToken, "github-token", "", "GitHub token for API requests (default: input, then GITHUB_TOKEN / GH_TOKEN)")
	flags.StringVar(&o.apiURL, "api-url", "", "GitHub API base URL (default: GITHUB_API_URL, then "+gateways.DefaultAPIBaseURL+")")
	flags.StringVar(&o.catalog, "catalog", "", "YAML file merged over the built-in catalog")
}

// resolve applies flag > action input > environment precedence
func (o *connectionOptions) resolve(env *actions.Environment) (connectionOptions, error) {
	resolved := connectionOptions{
		product:     services.Resolve(o.product, defaultProduct),
		githubToken: services.Resolve(o.githubToken, env.Input("github-token"), env.Getenv("GITHUB_TOKEN"), env.Getenv("GH_TOKEN")),
		apiURL:      services.Resolve(o.apiURL, env.Getenv("GITHUB_API_URL"), gateways.DefaultAPIBaseURL),
		catalog:     services.Resolve(o.catalog, env.Input("catalog")),
	}

	if resolved.githubToken == "" {
		return resolved, fmt.Errorf("github-token is required")
	}

	return resolved, nil
}

// installOptions holds the install command configuration
type installOptions struct {
	connectionOptions
	version         string
	versionChecksum string
	signingKey      string
	minisignKey     string
}

func (o *installOptions) bind(cmd *cobra.Command) {
	o.connectionOptions.bind(cmd)

	flags := cmd.Flags()
	flags.StringVar(&o.version, "version", "", "version to install (default: catalog latest)")
	flags.StringVar(&o.versionChecksum, "version-checksum", "", "expected SHA-256 of the release asset, overrides the catalog")
	flags.StringVar(&o.signingKey, "signing-key", "", "armored OpenPGP key (inline, file or URL) for signed SHA256SUMS")
	flags.StringVar(&o.minisignKey, "minisign-key", "", "minisign public key (inline or file) for signed SHA256SUMS")
}

func (o *installOptions) resolve(env *actions.Environment) (installOptions, error) {
	conn, err := o.connectionOptions.resolve(env)
	if err != nil {
		return installOptions{}, err
	}

	return installOptions{
		connectionOptions: conn,
		version:           services.Resolve(o.version, env.Input("version")),
		versionChecksum:   services.Resolve(o.versionChecksum, env.Input("version-checksum")),
		signingKey:        services.Resolve(o.signingKey, env.Input("signing-key")),
		minisignKey:       services.Resolve(o.minisignKey, env.Input("minisign-key")),
	}, nil
}

// runnerDirs returns the download directory and tool cache root of the job
func runnerDirs(env *actions.Environment) (string, string) {
	downloadDir := services.Resolve(env.Getenv("RUNNER_TEMP"), os.TempDir())
	toolCacheDir := services.Resolve(env.Getenv("RUNNER_TOOL_CACHE"), downloadDir)
	return downloadDir, toolCacheDir
}
