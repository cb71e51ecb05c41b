package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shopbot.GO/catalog"
	"shopbot.GO/config"
)

var catalogValidateCmd = &cobra.Command{
	Use:   "catalog:validate",
	Short: "Load and validate the catalog document, print a summary",
	Run: func(cmd *cobra.Command, args []string) {
		config.LoadAppConfig()
		path := config.AppConfig.CatalogPath
		if len(args) > 0 {
			path = args[0]
		}

		tree, err := catalog.Load(path)
		if err != nil {
			fmt.Printf("Catalog invalid: %v\n", err)
			os.Exit(1)
		}

		leaves := 0
		tree.Leaves(func(catalog.Key, catalog.Leaf) { leaves++ })
		fmt.Printf("Catalog OK: %s\n", path)
		fmt.Printf("  categories: %d\n", len(tree.Categories))
		for _, c := range tree.Categories {
			fmt.Printf("  - %s (%s): %d brands, %d items\n", c.Key, c.Kind, len(c.Brands), len(c.Items))
		}
		fmt.Printf("  addressable leaves: %d\n", leaves)
	},
}
