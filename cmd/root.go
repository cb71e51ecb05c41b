package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shopbot",
	Short: "Conversational ordering bot and its ops tooling",
}

// Execute runs the CLI after applying registered commands.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(cronStartCmd)
	rootCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(stockListCmd)
	rootCmd.AddCommand(stockSetCmd)
}
