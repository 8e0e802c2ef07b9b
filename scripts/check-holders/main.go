// check-holders: reads the ReveCoin balance of a set of addresses on every
// known network in parallel and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-holders [address...]
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
	"github.com/Mohsinsiddi/tokenctl/internal/contract"
	"github.com/Mohsinsiddi/tokenctl/internal/rpc"
	"github.com/Mohsinsiddi/tokenctl/internal/units"
)

// Anvil's first two dev accounts: the deployer (owner) and a holder.
var defaultHolders = []string{
	"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
	"0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
}

const rpcTimeout = 12 * time.Second

type result struct {
	network string
	holder  string
	balance string
	note    string
}

func main() {
	holders := defaultHolders
	if len(os.Args) > 1 {
		holders = os.Args[1:]
	}
	for _, h := range holders {
		if !common.IsHexAddress(h) {
			fmt.Fprintf(os.Stderr, "not an address: %s\n", h)
			os.Exit(2)
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, c := range chain.NewRegistry().All() {
		wg.Add(1)
		go func(c chain.Chain) {
			defer wg.Done()
			rs := checkNetwork(c, holders)
			mu.Lock()
			results = append(results, rs...)
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	printTable(results)
}

func checkNetwork(c chain.Chain, holders []string) []result {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	out := make([]result, 0, len(holders))
	url, err := rpc.Select(ctx, c.RPCs, rpc.AlgorithmFastest)
	if err != nil {
		for _, h := range holders {
			out = append(out, result{network: c.Name, holder: shortAddr(h), balance: "—", note: "unreachable"})
		}
		return out
	}

	h := contract.Bind(contract.DefaultAddress, contract.ReveCoin(), chain.NewEVMClient(url), nil)
	for _, holder := range holders {
		r := result{network: c.Name, holder: shortAddr(holder), balance: "—"}
		vals, err := h.Call(ctx, "balanceOf", common.HexToAddress(holder))
		switch {
		case err != nil:
			r.note = shortErr(err)
		default:
			if bal, ok := vals[0].(*big.Int); ok {
				r.balance = units.ToDecimal(bal)
			} else {
				r.note = "unexpected result"
			}
		}
		out = append(out, r)
	}
	return out
}

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		return a.holder < b.holder
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NETWORK\tHOLDER\tBALANCE (REVE)\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 12))

	last := ""
	for _, r := range results {
		if r.network != last {
			if last != "" {
				fmt.Fprintln(w, "\t\t\t")
			}
			last = r.network
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.network, r.holder, r.balance, r.note)
	}
	w.Flush()
}

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
