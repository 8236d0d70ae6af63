package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/decimal"
	"github.com/decikv/decikv/pkg/store"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <key> <op> <operand>",
	Short: "Atomically update a key",
	Long: `Atomically apply an arithmetic operation to the value stored
under a key. The operation is one of add, sub, mul or div and the
operand is a plain decimal string. Concurrent updates never lose
increments; the losing writer retries on a fresh read.

Division rounds half to even. Pass --scale to pick the result scale,
otherwise the configured division scale applies.

Examples:
  decikv update balance add 10.25
  decikv update balance div 3 --scale 2`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		op := args[1]

		operand, err := decimal.Parse(args[2])
		if err != nil {
			fmt.Printf("Error parsing operand: %v\n", err)
			return
		}

		// Get config from context
		cfg, ok := configFromContext(cmd)
		if !ok {
			fmt.Printf("Error: config not found in context\n")
			return
		}

		scale := cfg.Decimal.DivisionScale
		if cmd.Flags().Changed("scale") {
			scale, _ = cmd.Flags().GetInt32("scale")
		}

		fn, err := updateTransform(op, operand, scale)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		engine, err := openEngine(cfg)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}
		defer engine.Close()

		updated, err := engine.Update(cmd.Context(), key, fn)
		if err != nil {
			fmt.Printf("Error updating key: %v\n", err)
			return
		}

		fmt.Printf("Successfully updated key '%s' to '%s'\n", key, updated.String())
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().Int32("scale", 0, "Result scale for div (default: configured division scale)")
}

// updateTransform builds the engine transform for one operation.
func updateTransform(op string, operand decimal.Decimal, scale int32) (store.Transform, error) {
	switch op {
	case "add":
		return func(cur decimal.Decimal) (decimal.Decimal, error) { return cur.Add(operand), nil }, nil
	case "sub":
		return func(cur decimal.Decimal) (decimal.Decimal, error) { return cur.Sub(operand), nil }, nil
	case "mul":
		return func(cur decimal.Decimal) (decimal.Decimal, error) { return cur.Mul(operand), nil }, nil
	case "div":
		return func(cur decimal.Decimal) (decimal.Decimal, error) { return cur.Div(operand, scale) }, nil
	default:
		return nil, fmt.Errorf("unknown operation %q (want add, sub, mul or div)", op)
	}
}
