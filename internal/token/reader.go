package token

import (
	"context"
	"fmt"
	"math/big"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/contract"
	"github.com/Mohsinsiddi/tokenctl/internal/units"
)

// Reader performs the read-only token queries.
type Reader struct {
	st  *store
	log *log.Logger
}

// Load queries name, symbol, owner and total supply in that order and
// replaces the token metadata. Nothing is stored unless all four succeed.
func (r *Reader) Load(ctx context.Context) error {
	h, err := r.handle("load")
	if err != nil {
		return err
	}

	var m Metadata
	if m.Name, err = callString(ctx, h, "name"); err != nil {
		return r.fail("load", err)
	}
	if m.Symbol, err = callString(ctx, h, "symbol"); err != nil {
		return r.fail("load", err)
	}
	if m.Owner, err = callAddress(ctx, h, "owner"); err != nil {
		return r.fail("load", err)
	}
	supply, err := callUint(ctx, h, "totalSupply")
	if err != nil {
		return r.fail("load", err)
	}
	m.TotalSupply = units.ToDecimal(supply)
	m.Loaded = true

	snap := r.st.update(func(s *Snapshot) { s.Metadata = m })
	r.log.Debug("loaded token", "name", m.Name, "symbol", m.Symbol,
		"supply", m.TotalSupply, "owner", m.Owner.Hex(), "isOwner", snap.IsOwner)
	return nil
}

// RefreshSupply re-queries totalSupply.
func (r *Reader) RefreshSupply(ctx context.Context) error {
	h, err := r.handle("refresh supply")
	if err != nil {
		return err
	}
	supply, err := callUint(ctx, h, "totalSupply")
	if err != nil {
		return r.fail("refresh supply", err)
	}
	total := units.ToDecimal(supply)
	r.st.update(func(s *Snapshot) { s.Metadata.TotalSupply = total })
	r.log.Debug("refreshed supply", "supply", total)
	return nil
}

// RefreshOwner re-queries owner and returns it.
func (r *Reader) RefreshOwner(ctx context.Context) (common.Address, error) {
	h, err := r.handle("refresh owner")
	if err != nil {
		return common.Address{}, err
	}
	owner, err := callAddress(ctx, h, "owner")
	if err != nil {
		return common.Address{}, r.fail("refresh owner", err)
	}
	r.st.update(func(s *Snapshot) { s.Metadata.Owner = owner })
	return owner, nil
}

func (r *Reader) handle(op string) (*contract.Handle, error) {
	h := r.st.contractHandle()
	if h == nil {
		return nil, &Error{Kind: KindNotConnected, Op: op, Err: ErrNotConnected}
	}
	return h, nil
}

func (r *Reader) fail(op string, err error) error {
	err = wrap(op, err)
	r.log.Error("read failed", "op", op, "kind", KindOf(err), "err", err)
	return err
}

func callString(ctx context.Context, h *contract.Handle, method string) (string, error) {
	out, err := h.Call(ctx, method)
	if err != nil {
		return "", err
	}
	v, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

func callAddress(ctx context.Context, h *contract.Handle, method string) (common.Address, error) {
	out, err := h.Call(ctx, method)
	if err != nil {
		return common.Address{}, err
	}
	v, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

func callUint(ctx context.Context, h *contract.Handle, method string) (*big.Int, error) {
	out, err := h.Call(ctx, method)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}
