package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenctl/internal/token"
	"github.com/Mohsinsiddi/tokenctl/internal/ui"
	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

var (
	txTo      string
	txAmount  string
	assumeYes bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer tokens to another address",
	Long: `Transfer ReveCoin from the connected wallet.

Amounts are decimal token units (18 decimals): 1.5 sends 1.5 tokens.

Examples:
  tokenctl transfer --to 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 --amount 1.5
  tokenctl transfer --to 0x7099…79C8 --amount 10 --wallet deployer --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntent(cmd.Context(), token.Transfer(txTo, txAmount))
	},
}

var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn tokens from the owner's balance (owner only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntent(cmd.Context(), token.Burn(txAmount))
	},
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint new tokens to the owner (owner only)",
	Long: `Mint new ReveCoin. The recipient is always the current contract owner,
read from the contract at submission time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntent(cmd.Context(), token.Mint(txAmount))
	},
}

// runIntent connects, submits intent and waits for its outcome.
func runIntent(parent context.Context, intent token.Intent) error {
	ctx, cancel := context.WithTimeout(parent, cfg.Timeout())
	defer cancel()

	approve := wallet.Approver(ui.Confirm)
	if assumeYes {
		approve = wallet.AutoApprove
	}
	s, err := openSession(ctx, approve)
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

	snaps, unsubscribe := s.ctrl.Subscribe()
	defer unsubscribe()

	task, err := s.ctrl.Submit(ctx, intent)
	if err != nil {
		return err
	}

	// The approval prompt runs before broadcast; animate only afterwards.
	var sp *ui.Spinner
	if hash, ok := awaitHash(task, snaps); ok {
		fmt.Fprintln(os.Stderr, ui.Info("Sent "+hash))
		sp = ui.NewSpinner(os.Stderr, "Waiting for confirmation…")
		sp.Start()
	}

	status, err := task.Wait(ctx)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	fmt.Println(ui.Success(fmt.Sprintf("%s confirmed in %s", intent, status.Hash.Hex())))
	if u := s.txURL(status.Hash.Hex()); u != "" {
		fmt.Println(ui.Meta(u))
	}
	if intent.Action.OwnerOnly() {
		m := s.ctrl.Snapshot().Metadata
		fmt.Println(ui.Meta("Total supply: ") + ui.Val(m.TotalSupply+" "+m.Symbol))
	}
	return nil
}

// awaitHash returns the task's transaction hash once the node has accepted
// it, or false when the task finished first.
func awaitHash(task *token.Task, snaps <-chan token.Snapshot) (string, bool) {
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return "", false
			}
			if st := snap.Status; st.TaskID == task.ID && st.HasHash() {
				return st.Hash.Hex(), true
			}
		case <-task.Done():
			return "", false
		}
	}
}

func init() {
	transferCmd.Flags().StringVar(&txTo, "to", "", "recipient address (0x…)")
	for _, c := range []*cobra.Command{transferCmd, burnCmd, mintCmd} {
		c.Flags().StringVar(&txAmount, "amount", "", "amount in token units, e.g. 1.5")
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "sign without asking")
		c.MarkFlagRequired("amount") //nolint:errcheck
	}
	transferCmd.MarkFlagRequired("to") //nolint:errcheck
}
