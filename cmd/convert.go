package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenctl/internal/units"
)

var fromBase bool

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert between token units and base units",
	Long: `Convert a decimal token amount to base units (10^18 per token), or the
reverse with --from-base.

Examples:
  tokenctl convert 1.5
  tokenctl convert --from-base 1500000000000000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := convertAmount(args[0], fromBase)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func convertAmount(in string, reverse bool) (string, error) {
	if !reverse {
		v, err := units.ToBaseUnits(in)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	}
	v, ok := new(big.Int).SetString(in, 10)
	if !ok || v.Sign() < 0 {
		return "", fmt.Errorf("%w: %q is not a base-unit integer", units.ErrInvalidAmount, in)
	}
	return units.ToDecimal(v), nil
}

func init() {
	convertCmd.Flags().BoolVar(&fromBase, "from-base", false, "treat the input as base units")
}
