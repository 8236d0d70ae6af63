package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/decimal"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <key> <value>",
	Short: "Create a key with a decimal value",
	Long: `Create a key with a decimal value in the local store. The key
must not exist yet and the value must be a plain decimal string.

Example:
  decikv create balance 100.50`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		value, err := decimal.Parse(args[1])
		if err != nil {
			fmt.Printf("Error parsing value: %v\n", err)
			return
		}

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

		if err := engine.Create(key, value); err != nil {
			fmt.Printf("Error creating key: %v\n", err)
			return
		}

		fmt.Printf("Successfully created key '%s' with value '%s'\n", key, value.String())
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
