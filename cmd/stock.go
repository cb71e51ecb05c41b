package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shopbot.GO/catalog"
	"shopbot.GO/config"
	stockRepo "shopbot.GO/model/repository/stock"
	"shopbot.GO/stock"
)

var stockSetETA string

func openOverlay() (*catalog.Tree, *stock.Overlay) {
	config.LoadAppConfig()
	tree, err := catalog.Load(config.AppConfig.CatalogPath)
	if err != nil {
		fmt.Printf("Failed to load catalog: %v\n", err)
		os.Exit(1)
	}
	db, err := config.NewDB(config.AppConfig.OverlayDB)
	if err != nil {
		fmt.Printf("Failed to open overlay DB: %v\n", err)
		os.Exit(1)
	}
	repo, err := stockRepo.NewStockRepository(db)
	if err != nil {
		fmt.Printf("Failed to init overlay store: %v\n", err)
		os.Exit(1)
	}
	return tree, stock.Open(repo)
}

var stockListCmd = &cobra.Command{
	Use:   "stock:list",
	Short: "List every addressable leaf with its availability",
	Run: func(cmd *cobra.Command, args []string) {
		tree, overlay := openOverlay()
		tree.Leaves(func(k catalog.Key, leaf catalog.Leaf) {
			entry := overlay.Get(k.Token())
			status := "available"
			if !entry.Available {
				status = "unavailable"
				if entry.ETA != nil {
					status += " until " + entry.ETA.Format("2006-01-02")
				}
			}
			fmt.Printf("%-28s %-45s %8s €  %s\n", k.Token(), leaf.Name, leaf.Price.StringFixed(2), status)
		})
	},
}

var stockSetCmd = &cobra.Command{
	Use:   "stock:set <address-key> <available|unavailable>",
	Short: "Overwrite one leaf's availability in the overlay",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tree, overlay := openOverlay()

		key, err := catalog.ParseKey(args[0])
		if err != nil {
			fmt.Printf("Bad address key: %v\n", err)
			os.Exit(1)
		}
		leaf, err := tree.Resolve(key)
		if err != nil {
			fmt.Printf("Address key does not resolve: %v\n", err)
			os.Exit(1)
		}

		available := args[1] == "available"
		if !available && args[1] != "unavailable" {
			fmt.Println("Second argument must be 'available' or 'unavailable'")
			os.Exit(1)
		}

		var eta *time.Time
		if !available && stockSetETA != "" {
			t, err := time.Parse("2006-01-02", stockSetETA)
			if err != nil {
				fmt.Printf("Bad --eta (want YYYY-MM-DD): %v\n", err)
				os.Exit(1)
			}
			eta = &t
		}

		overlay.Set(key.Token(), available, eta)
		if err := overlay.FlushIfDirty(); err != nil {
			fmt.Printf("Failed to persist overlay: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s (%s) -> %s\n", leaf.Name, key.Token(), args[1])
	},
}

func init() {
	stockSetCmd.Flags().StringVar(&stockSetETA, "eta", "", "expected supply date (YYYY-MM-DD)")
}
