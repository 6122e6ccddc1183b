package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
)

// defaultProduct is the catalog installed when --product is not given
const defaultProduct = "hc-releases"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	action := githubactions.New()
	if err := newRootCmd(action).ExecuteContext(ctx); err != nil {
		// Surfaces as a failed step with an error annotation
		action.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(action *githubactions.Action) *cobra.Command {
	opts := &installOptions{}

	rootCmd := &cobra.Command{
		Use:   "setup-hc-releases",
		Short: "Install a released HashiCorp tool into a GitHub Actions job",
		Long: `setup-hc-releases downloads a platform-specific release asset from GitHub,
verifies its SHA-256 checksum, extracts it, adds it to PATH and reports the
installed version as the "version" step output.

Every flag falls back to the action input of the same name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.Context(), action, opts)
		},
	}

	opts.bind(rootCmd)

	rootCmd.AddCommand(newChecksumsCmd(action))
	rootCmd.AddCommand(newCatalogsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
