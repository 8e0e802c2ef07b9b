package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
	"github.com/Mohsinsiddi/tokenctl/internal/rpc"
	"github.com/Mohsinsiddi/tokenctl/internal/token"
	"github.com/Mohsinsiddi/tokenctl/internal/ui"
	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

// session is everything a token command needs, built from config and flags.
type session struct {
	ctrl     *token.Controller
	provider *wallet.Provider // nil when no wallet is configured
	mgr      *wallet.Manager
	network  *chain.Chain
	rpcURL   string
}

// newWalletManager opens the wallet list in the config dir. Keys live in
// the OS keychain, or in an encrypted file when TOKENCTL_KEYRING_PASSWORD is
// set.
func newWalletManager() (*wallet.Manager, error) {
	keyDir := filepath.Join(cfg.Dir(), "keys")
	var (
		keys wallet.KeyStore
		err  error
	)
	if pw := os.Getenv(wallet.PasswordEnv); pw != "" {
		keys, err = wallet.OpenFileKeystore(keyDir, pw)
	} else {
		keys, err = wallet.OpenKeystore(keyDir)
	}
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(keys),
	), nil
}

// resolveNetwork picks an RPC endpoint for the configured network.
func resolveNetwork(ctx context.Context) (*chain.Chain, string, error) {
	net, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return nil, "", fmt.Errorf("unknown network %q (see 'tokenctl network list')", cfg.Network)
	}
	urls := net.RPCs
	if cfg.RPCURL != "" {
		urls = []string{cfg.RPCURL}
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return nil, "", err
	}
	url, err := rpc.Select(ctx, urls, algo)
	if err != nil {
		return nil, "", fmt.Errorf("selecting RPC for %s: %w", net.Name, err)
	}
	logger.Debug("rpc selected", "network", net.Name, "url", url)
	return net, url, nil
}

// openSession wires provider, node and controller. approve answers wallet
// prompts. A missing wallet is not an error here: the controller reports
// ProviderUnavailable when it tries to connect.
func openSession(ctx context.Context, approve wallet.Approver) (*session, error) {
	net, url, err := resolveNetwork(ctx)
	if err != nil {
		return nil, err
	}
	mgr, err := newWalletManager()
	if err != nil {
		return nil, err
	}

	s := &session{mgr: mgr, network: net, rpcURL: url}
	opts := token.Options{
		Backend: chain.NewEVMClient(url),
		Network: net.Name,
		Logger:  logger,
	}

	p, err := wallet.NewProvider(mgr, approve, cfg.DefaultWallet)
	switch {
	case err == nil:
		s.provider = p
		opts.Provider = p
	case errors.Is(err, wallet.ErrProviderUnavailable):
		logger.Warn("no wallet provider", "err", err)
	default:
		return nil, err
	}

	s.ctrl = token.New(opts)
	return s, nil
}

// grantActive marks the active account as approved. Naming the wallet on
// the command line is the user's consent to connect it.
func (s *session) grantActive() error {
	if s.provider == nil {
		return nil
	}
	return s.provider.SwitchAccount(s.provider.Active().Name)
}

func (s *session) close() { s.ctrl.Close() }

// txURL links a hash to the network's explorer, or returns "".
func (s *session) txURL(hash string) string { return s.network.TxURL(hash) }

// describeError renders err, prefixed with its kind for controller errors.
func describeError(err error) string {
	var te *token.Error
	if !errors.As(err, &te) {
		return ui.Err(err.Error())
	}
	out := ui.Err(fmt.Sprintf("[%s] %s", te.Kind, err))
	switch te.Kind {
	case token.KindProviderUnavailable:
		out += "\n" + ui.Hint("Add a wallet with: tokenctl wallet add <name> --key <private-key>")
	case token.KindNotOwner:
		out += "\n" + ui.Hint("Only the contract owner can burn or mint.")
	}
	return out
}
