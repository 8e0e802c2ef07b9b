package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
)

// FallbackGasLimit is used when gas estimation fails for reasons other than
// a revert.
const FallbackGasLimit = 100000

var (
	// ErrReadOnly is returned by Transact on a handle bound without a signer.
	ErrReadOnly = errors.New("contract handle has no signer")
	// ErrEmptyResult means eth_call returned no data, usually because nothing
	// is deployed at the address on this network.
	ErrEmptyResult = errors.New("empty call result")
)

// Backend is the node access a Handle needs. *chain.EVMClient implements it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error)
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error)
}

// Signer signs transactions for one account. summary is shown to the user
// when approval is requested.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int, summary string) ([]byte, error)
}

// Handle is a callable reference to a deployed contract, bound to one signer.
type Handle struct {
	address common.Address
	abi     abi.ABI
	backend Backend
	signer  Signer

	// sendMu serializes nonce lookup through broadcast so overlapping
	// submissions from one account get distinct nonces.
	sendMu sync.Mutex
}

// Bind returns a handle for the contract at address. signer may be nil for a
// read-only handle.
func Bind(address common.Address, parsed abi.ABI, backend Backend, signer Signer) *Handle {
	return &Handle{
		address: address,
		abi:     parsed,
		backend: backend,
		signer:  signer,
	}
}

// Address returns the contract address.
func (h *Handle) Address() common.Address { return h.address }

// From returns the signing account, or the zero address for a read-only handle.
func (h *Handle) From() common.Address {
	if h.signer == nil {
		return common.Address{}
	}
	return h.signer.Address()
}

// Call invokes a read function and returns its decoded outputs.
func (h *Handle) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	m, ok := h.abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("function %q not found in ABI", method)
	}
	if !m.IsConstant() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", method, m.StateMutability)
	}

	calldata, err := h.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := h.backend.CallContract(ctx, h.address, calldata)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	if len(result) == 0 && len(m.Outputs) > 0 {
		return nil, fmt.Errorf("calling %s at %s: %w", method, h.address.Hex(), ErrEmptyResult)
	}

	out, err := h.abi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", method, err)
	}
	return out, nil
}

// Transact signs and broadcasts a call to a write function and returns the
// transaction hash. It does not wait for the receipt.
func (h *Handle) Transact(ctx context.Context, method string, args ...interface{}) (common.Hash, error) {
	if h.signer == nil {
		return common.Hash{}, ErrReadOnly
	}
	m, ok := h.abi.Methods[method]
	if !ok {
		return common.Hash{}, fmt.Errorf("function %q not found in ABI", method)
	}
	if m.IsConstant() {
		return common.Hash{}, fmt.Errorf("function %q is not a write function", method)
	}

	calldata, err := h.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding call: %w", err)
	}

	from := h.signer.Address()

	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	chainID, err := h.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting chain id: %w", err)
	}

	gasPrice, err := h.backend.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := h.backend.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	// A revert during estimation means the transaction would fail on chain.
	gas, err := h.backend.EstimateGas(ctx, from, h.address, calldata)
	if errors.Is(err, chain.ErrExecutionReverted) {
		return common.Hash{}, fmt.Errorf("estimating gas for %s: %w", method, err)
	}
	if err != nil {
		gas = FallbackGasLimit
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &h.address,
		Value:     big.NewInt(0),
		Data:      calldata,
	})

	raw, err := h.signer.SignTx(tx, chainID, describe(method, args))
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := h.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

// Wait blocks until the transaction is mined. A reverted receipt is returned
// with an error wrapping chain.ErrTxReverted.
func (h *Handle) Wait(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error) {
	return h.backend.WaitForReceipt(ctx, hash)
}

// describe renders a call like "transfer(0xabc…, 1500000000000000000)".
func describe(method string, args []interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return method + "(" + strings.Join(parts, ", ") + ")"
}
