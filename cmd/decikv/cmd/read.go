package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <key>",
	Short: "Read the value of a key",
	Long: `Read the decimal value stored under a key.

Example:
  decikv read balance`,
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

		value, err := engine.Read(key)
		if err != nil {
			fmt.Printf("Error reading value: %v\n", err)
			return
		}

		fmt.Printf("%s\n", value.String())
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
