package token

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
	"github.com/Mohsinsiddi/tokenctl/internal/rpc"
	"github.com/Mohsinsiddi/tokenctl/internal/units"
	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{wallet.ErrProviderUnavailable, KindProviderUnavailable},
		{fmt.Errorf("signing transaction: %w", wallet.ErrUserRejected), KindUserRejected},
		{ErrNoAccounts, KindUserRejected},
		{wallet.ErrNotAuthorized, KindNotConnected},
		{fmt.Errorf("%w (hash: 0x1)", chain.ErrTxReverted), KindTransactionReverted},
		{fmt.Errorf("estimating: %w", &chain.RPCError{Code: 3, Message: "execution reverted"}), KindTransactionReverted},
		{fmt.Errorf("%w: bad", units.ErrInvalidAmount), KindInvalidAmount},
		{fmt.Errorf("%w: dial tcp", chain.ErrNetwork), KindNetwork},
		{rpc.ErrNoHealthyRPC, KindNetwork},
		{context.DeadlineExceeded, KindNetwork},
		{&chain.RPCError{Code: -32000, Message: "nonce too low"}, KindNetwork},
		{&Error{Kind: KindNotOwner, Op: "burn", Err: ErrNotOwner}, KindNotOwner},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := &Error{Kind: KindNotOwner, Op: "mint", Err: ErrNotOwner}
	err := wrap("submit", fmt.Errorf("outer: %w", inner))
	assert.Equal(t, KindNotOwner, KindOf(err))
	assert.Nil(t, wrap("x", nil))
}

func TestErrorUnwrap(t *testing.T) {
	err := wrap("connect", wallet.ErrUserRejected)
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
	assert.Equal(t, "connect: user rejected the request", err.Error())

	var te *Error
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, "connect", te.Op)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NetworkError", KindNetwork.String())
	assert.Equal(t, "TransactionReverted", KindTransactionReverted.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
