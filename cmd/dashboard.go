package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenctl/internal/logging"
	"github.com/Mohsinsiddi/tokenctl/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live token dashboard with transfer, burn and mint forms",
	Long: `Open a live view of the token and the connected wallet.

The transfer form is always available; burn and mint appear only while the
connected account owns the contract. Wallet prompts (account access and
every signature) are shown inside the dashboard. Press w to switch to the
next configured wallet.

Diagnostic logs go to ~/.tokenctl/tokenctl.log while the dashboard runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := logging.OpenFile(cfg.LogPath())
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = logging.New(f, level)

		ctx := cmd.Context()
		bridge := ui.NewApprovalBridge()
		s, err := openSession(ctx, bridge.Approve)
		if err != nil {
			return err
		}
		defer s.close()

		// Unlock the key now: a keyring password prompt cannot share the
		// terminal with the dashboard.
		if s.provider != nil {
			if _, err := s.mgr.Key(s.provider.Active().Name); err != nil {
				return fmt.Errorf("unlocking wallet key: %w", err)
			}
		}

		return ui.RunDashboard(ctx, ui.DashboardOptions{
			Controller:   s.ctrl,
			Approvals:    bridge,
			SwitchWallet: s.nextWallet,
			TxURL:        s.txURL,
		})
	},
}

// nextWallet makes the wallet after the active one (by name) active.
func (s *session) nextWallet() (string, error) {
	if s.provider == nil {
		return "", errors.New("no wallet configured")
	}
	wallets, err := s.mgr.List()
	if err != nil {
		return "", err
	}
	if len(wallets) < 2 {
		return "", errors.New("only one wallet configured")
	}
	active := s.provider.Active().Name
	next := wallets[0]
	for i, w := range wallets {
		if w.Name == active {
			next = wallets[(i+1)%len(wallets)]
			break
		}
	}
	if err := s.provider.SwitchAccount(next.Name); err != nil {
		return "", err
	}
	return next.Name, nil
}
