package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a key",
	Long: `Delete a key from the local store.

Example:
  decikv delete balance`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		// Get config from context
		cfg, ok := configFromContext(cmd)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		engine, err := openEngine(cfg)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}
		defer engine.Close()

		if err := engine.Delete(key); err != nil {
			fmt.Printf("Error deleting key: %v\n", err)
			return
		}

		fmt.Printf("Successfully deleted key '%s'\n", key)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
