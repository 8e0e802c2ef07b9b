package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenctl/internal/config"
	"github.com/Mohsinsiddi/tokenctl/internal/ui"
)

var (
	walletKeyFlag   string
	walletForceFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the accounts the wallet provider can connect",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> --key <private-key>",
	Short: "Import a wallet from its private key",
	Long: `Import a signing wallet. The private key is stored in the OS keychain
(or the encrypted file keystore when TOKENCTL_KEYRING_PASSWORD is set);
only the name and address are written to wallets.json.

The first wallet added becomes the default.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.Import(name, walletKeyFlag)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q added: %s", name, ui.Addr(w.Address.Hex()))))
		if w.IsDefault {
			fmt.Println(ui.Info("This is now the default wallet."))
		} else {
			fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: tokenctl wallet use %s", name)))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: tokenctl wallet add deployer --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
			}
			t.AddRow(ui.Row{w.Name, w.Address.Hex(), def})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Long: `Set the wallet the provider connects by default.

A dashboard already running in another terminal keeps its account; press w
inside the dashboard to switch there.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		if err := config.Update(cfg.Dir(), func(c *config.Config) error {
			c.DefaultWallet = name
			return nil
		}); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !walletForceFlag && !ui.Confirm(fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if err := config.Update(cfg.Dir(), func(c *config.Config) error {
			if c.DefaultWallet == name {
				c.DefaultWallet = ""
			}
			return nil
		}); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (0x optional)")
	walletAddCmd.MarkFlagRequired("key") //nolint:errcheck
	walletRemoveCmd.Flags().BoolVarP(&walletForceFlag, "force", "f", false, "remove without asking")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
