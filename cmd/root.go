package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenctl/internal/config"
	"github.com/Mohsinsiddi/tokenctl/internal/logging"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/tokenctl/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	logger      *log.Logger
	verbose     bool
	networkFlag string
	rpcFlag     string
	walletFlag  string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tokenctl",
	Short: "Wallet console for the ReveCoin token",
	Long: `tokenctl connects a local wallet to the ReveCoin ERC-20 contract.

  Read the token's name, symbol, supply and owner, transfer tokens, and
  (as the contract owner) burn or mint supply. Run 'tokenctl dashboard'
  for a live view.

Configuration lives in ~/.tokenctl/config.json. Every key can be
overridden with a TOKENCTL_<KEY> environment variable or a .env file in
the working directory; the global flags below take precedence over both.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if networkFlag != "" {
			cfg.Network = networkFlag
		}
		if rpcFlag != "" {
			cfg.RPCURL = rpcFlag
		}
		if walletFlag != "" {
			cfg.DefaultWallet = walletFlag
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = logging.New(os.Stderr, level)
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $TOKENCTL_CONFIG_DIR or ~/.tokenctl)")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network name (see 'tokenctl network list')")
	rootCmd.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "RPC URL, bypasses endpoint selection")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "wallet to act as (default: the configured default wallet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(
		infoCmd,
		transferCmd,
		burnCmd,
		mintCmd,
		dashboardCmd,
		walletCmd,
		networkCmd,
		configCmd,
		convertCmd,
	)
}
