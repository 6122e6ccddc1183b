package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hashicorp/setup-hc-releases/internal/external-adapters/yaml"
)

func newCatalogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List the products with a built-in catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := yaml.NewCatalogRepository("")
			if err != nil {
				return fmt.Errorf("failed to initialize catalog: %w", err)
			}

			products, err := repo.ListProducts()
			if err != nil {
				return err
			}

			for _, product := range products {
				fmt.Fprintln(cmd.OutOrStdout(), product)
			}
			return nil
		},
	}
}
