// Package token is the wallet/contract interaction controller: it connects
// a wallet provider, binds the ReveCoin contract to the active signer, reads
// token state and tracks submitted transactions.
package token

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/contract"
	"github.com/Mohsinsiddi/tokenctl/internal/logging"
)

// Options configures a Controller.
type Options struct {
	// Provider is the wallet. Leave it nil (not a typed nil pointer) when no
	// wallet is available; Connect then fails with KindProviderUnavailable.
	Provider Provider
	// Backend is the node. *chain.EVMClient implements it.
	Backend contract.Backend
	// Address defaults to contract.DefaultAddress.
	Address common.Address
	// Network is a display name carried in snapshots.
	Network string
	Logger  *log.Logger
}

// Controller owns the session state and wires the connector, binder,
// reader and submitter together.
type Controller struct {
	st        *store
	connector *Connector
	binder    *Binder
	reader    *Reader
	submitter *Submitter
	provider  Provider
	log       *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	unwatch func()
	watchWG sync.WaitGroup
}

// New creates a disconnected controller.
func New(opts Options) *Controller {
	if opts.Address == (common.Address{}) {
		opts.Address = contract.DefaultAddress
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	st := newStore(opts.Network, opts.Address)
	reader := &Reader{st: st, log: logger.With("component", "reader")}
	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		st:        st,
		connector: &Connector{provider: opts.Provider, st: st, log: logger.With("component", "connector")},
		binder: &Binder{
			address:  opts.Address,
			abi:      contract.ReveCoin(),
			backend:  opts.Backend,
			provider: opts.Provider,
			st:       st,
			log:      logger.With("component", "binder"),
		},
		reader:    reader,
		submitter: &Submitter{st: st, reader: reader, log: logger.With("component", "submitter")},
		provider:  opts.Provider,
		log:       logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start subscribes to account changes, then connects, binds and loads.
// The watcher keeps running after a failed connect so a later account
// switch still takes effect.
func (c *Controller) Start(ctx context.Context) error {
	c.watch()
	return c.Connect(ctx)
}

// Connect requests account access, binds the contract and loads the token.
func (c *Controller) Connect(ctx context.Context) error {
	if err := c.connector.Connect(ctx); err != nil {
		return c.record(err)
	}
	if _, err := c.binder.Bind(ctx); err != nil {
		return c.record(err)
	}
	if err := c.reader.Load(ctx); err != nil {
		return c.record(err)
	}
	c.clearError()
	return nil
}

// Rebind rebuilds the contract handle for the provider's current signer.
func (c *Controller) Rebind(ctx context.Context) error {
	_, err := c.binder.Bind(ctx)
	return c.record(err)
}

// Reload re-reads all token metadata.
func (c *Controller) Reload(ctx context.Context) error {
	if err := c.reader.Load(ctx); err != nil {
		return c.record(err)
	}
	c.clearError()
	return nil
}

// RefreshSupply re-reads the total supply.
func (c *Controller) RefreshSupply(ctx context.Context) error {
	return c.record(c.reader.RefreshSupply(ctx))
}

// Submit validates and starts intent. The task runs until it completes,
// ctx is done or the controller is closed.
func (c *Controller) Submit(ctx context.Context, intent Intent) (*Task, error) {
	taskCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)

	t, err := c.submitter.Submit(taskCtx, intent)
	if err != nil {
		stop()
		cancel()
		return nil, c.record(err)
	}
	go func() {
		<-t.Done()
		stop()
		cancel()
	}()
	return t, nil
}

// Disconnect forgets the connected account and drops the contract handle.
func (c *Controller) Disconnect() { c.connector.Disconnect() }

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot { return c.st.get() }

// Subscribe delivers snapshots after every change, starting with the
// current one. Slow readers only see the latest snapshot. The returned func
// unsubscribes.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) { return c.st.subscribe() }

// Close stops the account watcher, cancels running tasks, waits for them
// and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	unwatch := c.unwatch
	c.unwatch = nil
	c.mu.Unlock()

	c.cancel()
	if unwatch != nil {
		unwatch()
	}
	c.watchWG.Wait()
	c.submitter.wait()
	c.st.close()
}

func (c *Controller) watch() {
	if c.provider == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unwatch != nil {
		return
	}
	ch, unwatch := c.provider.SubscribeAccounts()
	c.unwatch = unwatch

	c.watchWG.Add(1)
	go func() {
		defer c.watchWG.Done()
		for accounts := range ch {
			c.accountsChanged(accounts)
		}
	}()
}

// accountsChanged rebinds and reloads after the wallet switched accounts.
func (c *Controller) accountsChanged(accounts []common.Address) {
	if len(accounts) == 0 {
		c.log.Info("wallet disconnected")
		c.connector.Disconnect()
		return
	}
	c.log.Info("account changed", "address", accounts[0].Hex())
	c.connector.SetAccounts(accounts)
	if _, err := c.binder.Bind(c.ctx); err != nil {
		c.record(err) //nolint:errcheck
		return
	}
	if err := c.reader.Load(c.ctx); err != nil {
		c.record(err) //nolint:errcheck
		return
	}
	c.clearError()
}

// record stores err as the last error and returns it.
func (c *Controller) record(err error) error {
	if err == nil {
		return nil
	}
	f := failureOf(err)
	c.st.update(func(s *Snapshot) { s.LastError = f })
	c.log.Warn("operation failed", "op", f.Op, "kind", f.Kind, "err", err)
	return err
}

func (c *Controller) clearError() {
	c.st.update(func(s *Snapshot) { s.LastError = nil })
}
