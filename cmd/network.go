package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
	"github.com/Mohsinsiddi/tokenctl/internal/config"
	"github.com/Mohsinsiddi/tokenctl/internal/rpc"
	"github.com/Mohsinsiddi/tokenctl/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect and choose networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 30},
			{Title: "Chain ID", Width: 10},
			{Title: "RPCs", Width: 5},
			{Title: "Active", Width: 6},
		})
		for _, c := range chain.NewRegistry().All() {
			active := ""
			if c.Name == cfg.Network {
				active = "✓"
			}
			t.AddRow(ui.Row{c.Name, c.DisplayName, fmt.Sprintf("%d", c.ChainID), fmt.Sprintf("%d", len(c.RPCs)), active})
		}
		fmt.Println(t.Render())
		if cfg.RPCURL != "" {
			fmt.Println(ui.Meta("RPC override in effect: " + cfg.RPCURL))
		}
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q (see 'tokenctl network list')", args[0])
		}
		if err := config.Update(cfg.Dir(), func(conf *config.Config) error {
			conf.Network = c.Name
			return nil
		}); err != nil {
			return err
		}
		fmt.Println(ui.Success("Default network set to " + ui.ChainName(c.DisplayName)))
		return nil
	},
}

var networkProbeCmd = &cobra.Command{
	Use:   "probe [name]",
	Short: "Measure latency and head block of a network's RPC endpoints",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cfg.Network
		if len(args) == 1 {
			name = args[0]
		}
		c, err := chain.NewRegistry().GetByName(name)
		if err != nil {
			return fmt.Errorf("unknown network %q (see 'tokenctl network list')", name)
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		results := rpc.Probe(ctx, c.RPCs)
		winner, pickErr := rpc.Pick(results, algo)

		t := ui.NewTable([]ui.Column{
			{Title: "URL", Width: 44},
			{Title: "Latency", Width: 10},
			{Title: "Block", Width: 12},
			{Title: "Status", Width: 24},
		})
		for i, e := range results {
			status := "ok"
			if !e.Healthy() {
				status = e.Err.Error()
			} else if pickErr == nil && e.URL == winner.URL {
				status = "selected (" + string(algo) + ")"
			}
			latency, block := "-", "-"
			if e.Healthy() {
				latency = e.Latency.Round(time.Millisecond).String()
				block = fmt.Sprintf("%d", e.BlockNumber)
			}
			t.AddRow(ui.Row{e.URL, latency, block, status})
			if pickErr == nil && e.URL == winner.URL {
				t.SelIdx = i
			}
		}
		fmt.Println(ui.StyleTitle.Render("RPC endpoints for " + c.DisplayName))
		fmt.Println(t.Render())
		return pickErr
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd, networkProbeCmd)
}
