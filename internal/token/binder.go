package token

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/contract"
	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

// Binder builds the contract handle for the provider's current signer.
type Binder struct {
	address  common.Address
	abi      abi.ABI
	backend  contract.Backend
	provider Provider
	st       *store
	log      *log.Logger
}

// Bind replaces the contract handle with one signing as the provider's
// active account.
func (b *Binder) Bind(ctx context.Context) (*contract.Handle, error) {
	if b.provider == nil {
		return nil, &Error{Kind: KindProviderUnavailable, Op: "bind", Err: wallet.ErrProviderUnavailable}
	}
	if !b.st.get().Connection.Connected {
		return nil, &Error{Kind: KindNotConnected, Op: "bind", Err: ErrNotConnected}
	}

	signer, err := b.provider.Signer(ctx)
	if err != nil {
		return nil, wrap("bind", err)
	}

	h := contract.Bind(b.address, b.abi, b.backend, signer)
	if !b.st.setHandle(h) {
		// The account changed while the signer was fetched; the next
		// notification rebinds.
		return nil, &Error{Kind: KindNotConnected, Op: "bind", Err: ErrNotConnected}
	}
	b.log.Debug("bound contract", "contract", b.address.Hex(), "signer", signer.Address().Hex())
	return h, nil
}
