package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decikv/decikv/pkg/decimal"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <op> <a> <b>",
	Short: "Evaluate a decimal operation",
	Long: `Evaluate one arithmetic operation on two decimal operands
without touching any store. The operation is one of add, sub, mul
or div.

Examples:
  decikv eval add 0.1 0.2
  decikv eval div 1 3 --scale 10`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
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

		result, err := evaluate(args[0], args[1], args[2], scale)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("%s\n", result)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Int32("scale", 0, "Result scale for div (default: configured division scale)")
}

// evaluate applies one binary operation to two decimal strings.
func evaluate(op, a, b string, scale int32) (string, error) {
	x, err := decimal.Parse(a)
	if err != nil {
		return "", fmt.Errorf("invalid operand %q: %w", a, err)
	}
	y, err := decimal.Parse(b)
	if err != nil {
		return "", fmt.Errorf("invalid operand %q: %w", b, err)
	}

	switch op {
	case "add":
		return x.Add(y).String(), nil
	case "sub":
		return x.Sub(y).String(), nil
	case "mul":
		return x.Mul(y).String(), nil
	case "div":
		q, err := x.Div(y, scale)
		if err != nil {
			return "", err
		}
		return q.String(), nil
	default:
		return "", fmt.Errorf("unknown operation %q (want add, sub, mul or div)", op)
	}
}
