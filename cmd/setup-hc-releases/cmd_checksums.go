package main

import (
	"fmt"
	"io"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hashicorp/setup-hc-releases/internal/domain-adapters/gateways"
	orchestrators "github.com/hashicorp/setup-hc-releases/internal/domain-orchestrators"
	"github.com/hashicorp/setup-hc-releases/internal/external-adapters/actions"
	catalogyaml "github.com/hashicorp/setup-hc-releases/internal/external-adapters/yaml"
)

func newChecksumsCmd(action *githubactions.Action) *cobra.Command {
	opts := &connectionOptions{}
	var releaseVersion string

	cmd := &cobra.Command{
		Use:   "checksums",
		Short: "Print catalog checksum entries for a published release",
		Long: `Download the release asset of every supported platform, compute its
SHA-256 and print a YAML checksums fragment for the catalog.`,
		Example: `  setup-hc-releases checksums --version 0.1.15 >> overlay.yml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := actions.NewEnvironment(action)
			logger := actions.NewLogger(action)

			conn, err := opts.resolve(env)
			if err != nil {
				return err
			}

			catalogs, err := catalogyaml.NewCatalogRepository(conn.catalog)
			if err != nil {
				return fmt.Errorf("failed to initialize catalog: %w", err)
			}

			downloadDir, _ := runnerDirs(env)
			orch := orchestrators.NewChecksumsOrchestrator(
				catalogs,
				gateways.NewHTTPGitHubGateway(conn.githubToken,
					gateways.WithBaseURL(conn.apiURL),
					gateways.WithLogger(logger)),
				gateways.NewChecksumVerifier(),
				logger,
				downloadDir,
			)

			result, err := orch.GenerateChecksums(cmd.Context(), conn.product, releaseVersion)
			if err != nil {
				return err
			}

			return writeChecksums(cmd.OutOrStdout(), result)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&releaseVersion, "version", "", "release version (default: catalog latest)")

	return cmd
}

// writeChecksums renders a result in the catalog's checksums layout
func writeChecksums(w io.Writer, result *orchestrators.ChecksumsResult) error {
	byOS := make(map[string]map[string]string, len(result.Checksums))
	for goos, byArch := range result.Checksums {
		byOS[string(goos)] = make(map[string]string, len(byArch))
		for arch, sum := range byArch {
			byOS[string(goos)][string(arch)] = sum
		}
	}

	doc := map[string]any{
		"checksums": map[string]any{result.Version: byOS},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode checksums: %w", err)
	}
	return enc.Close()
}
