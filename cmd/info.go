package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenctl/internal/token"
	"github.com/Mohsinsiddi/tokenctl/internal/ui"
	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show token metadata and your privilege",
	Long: `Connect the wallet, read name, symbol, owner and total supply from the
ReveCoin contract, and report whether the connected account is the owner.

Examples:
  tokenctl info
  tokenctl info --wallet holder --network sepolia`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout())
		defer cancel()

		// Nothing is signed, so prompts are never shown.
		s, err := openSession(ctx, wallet.AutoApprove)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.grantActive(); err != nil {
			return err
		}
		if err := s.ctrl.Connect(ctx); err != nil {
			return err
		}

		fmt.Println(renderInfo(s.ctrl.Snapshot(), s))
		return nil
	},
}

func renderInfo(snap token.Snapshot, s *session) string {
	m := snap.Metadata
	role := "holder"
	if snap.IsOwner {
		role = "owner (burn and mint enabled)"
	}
	pairs := [][2]string{
		{"Network", s.network.DisplayName},
		{"RPC", s.rpcURL},
		{"Contract", snap.Contract.Hex()},
		{"Name", m.Name},
		{"Symbol", m.Symbol},
		{"Total supply", m.TotalSupply + " " + m.Symbol},
		{"Owner", m.Owner.Hex()},
		{"Account", snap.Connection.Address.Hex()},
		{"Privilege", role},
	}
	if u := s.network.AddressURL(snap.Contract.Hex()); u != "" {
		pairs = append(pairs, [2]string{"Explorer", u})
	}
	return ui.KeyValueBlock(m.Name+" ("+m.Symbol+")", pairs)
}
