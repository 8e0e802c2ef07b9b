package token

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

// Provider is the wallet that grants account access and signs.
// *wallet.Provider implements it.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Signer(ctx context.Context) (wallet.TxSigner, error)
	SubscribeAccounts() (<-chan []common.Address, func())
}

// Connector establishes the signing identity.
type Connector struct {
	provider Provider
	st       *store
	log      *log.Logger
}

// Connect requests account access and records the first account. A provider
// that already granted access answers without prompting, so repeated calls
// are safe.
func (c *Connector) Connect(ctx context.Context) error {
	if c.provider == nil {
		c.log.Warn("no wallet provider")
		return &Error{Kind: KindProviderUnavailable, Op: "connect", Err: wallet.ErrProviderUnavailable}
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		c.log.Warn("account request failed", "err", err)
		return wrap("connect", err)
	}
	if len(accounts) == 0 {
		return &Error{Kind: KindUserRejected, Op: "connect", Err: ErrNoAccounts}
	}

	c.SetAccounts(accounts)
	c.log.Info("connected", "address", accounts[0].Hex())
	return nil
}

// SetAccounts applies an account list from the provider. An empty list
// disconnects.
func (c *Connector) SetAccounts(accounts []common.Address) {
	if len(accounts) == 0 {
		c.st.setConnection(Connection{})
		return
	}
	c.st.setConnection(Connection{Connected: true, Address: accounts[0]})
}

// Disconnect clears the connection and drops the contract handle.
func (c *Connector) Disconnect() {
	c.SetAccounts(nil)
	c.log.Info("disconnected")
}
