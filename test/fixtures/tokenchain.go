package fixtures

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
	"github.com/Mohsinsiddi/tokenctl/internal/contract"
)

// ChainID of the simulated chain (the Hardhat/Anvil default).
const ChainID = 31337

// SentTx is a transaction the simulated chain accepted.
type SentTx struct {
	Hash   common.Hash
	From   common.Address
	Nonce  uint64
	Gas    uint64
	Method string
	Args   []interface{}
}

// TokenChain is an in-memory node hosting one ReveCoin contract. It
// implements contract.Backend and, through ServeHTTP, the JSON-RPC subset
// chain.EVMClient speaks.
type TokenChain struct {
	mu sync.Mutex

	address  common.Address
	abi      abi.ABI
	name     string
	symbol   string
	owner    common.Address
	supply   *big.Int
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	receipts map[common.Hash]*chain.TxReceipt
	sent     []SentTx
	calls    map[string]int
	block    uint64

	callErr     error
	sendErr     error
	estimateErr error
	waitErr     error
	revert      func(SentTx) bool
	gate        chan struct{}
}

// NewTokenChain deploys ReveCoin at contract.DefaultAddress with the whole
// initial supply held by owner.
func NewTokenChain(owner common.Address, supply *big.Int) *TokenChain {
	return &TokenChain{
		address:  contract.DefaultAddress,
		abi:      contract.ReveCoin(),
		name:     "ReveCoin",
		symbol:   "REVE",
		owner:    owner,
		supply:   new(big.Int).Set(supply),
		balances: map[common.Address]*big.Int{owner: new(big.Int).Set(supply)},
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*chain.TxReceipt),
		calls:    make(map[string]int),
		block:    100,
	}
}

// --- test controls ---

// FailCalls makes every eth_call fail with err (nil restores).
func (c *TokenChain) FailCalls(err error) { c.mu.Lock(); c.callErr = err; c.mu.Unlock() }

// FailSend makes eth_sendRawTransaction fail with err.
func (c *TokenChain) FailSend(err error) { c.mu.Lock(); c.sendErr = err; c.mu.Unlock() }

// FailEstimate makes eth_estimateGas fail with err.
func (c *TokenChain) FailEstimate(err error) { c.mu.Lock(); c.estimateErr = err; c.mu.Unlock() }

// FailWait makes receipt waiting fail with err.
func (c *TokenChain) FailWait(err error) { c.mu.Lock(); c.waitErr = err; c.mu.Unlock() }

// RevertWhen mines matching transactions with status 0.
func (c *TokenChain) RevertWhen(fn func(SentTx) bool) { c.mu.Lock(); c.revert = fn; c.mu.Unlock() }

// HoldReceipts blocks WaitForReceipt until the returned func is called.
func (c *TokenChain) HoldReceipts() (release func()) {
	gate := make(chan struct{})
	c.mu.Lock()
	c.gate = gate
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if c.gate == gate {
				c.gate = nil
			}
			c.mu.Unlock()
			close(gate)
		})
	}
}

// SetOwner transfers ownership out of band.
func (c *TokenChain) SetOwner(owner common.Address) { c.mu.Lock(); c.owner = owner; c.mu.Unlock() }

// SetSupply overwrites the total supply out of band.
func (c *TokenChain) SetSupply(v *big.Int) { c.mu.Lock(); c.supply = new(big.Int).Set(v); c.mu.Unlock() }

// Supply returns the current total supply.
func (c *TokenChain) Supply() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.supply)
}

// Balance returns the balance of account.
func (c *TokenChain) Balance(account common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.balanceOf(account))
}

// Sent returns every accepted transaction in order.
func (c *TokenChain) Sent() []SentTx {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentTx(nil), c.sent...)
}

// Calls returns how many eth_calls hit method.
func (c *TokenChain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// TotalCalls returns the number of eth_calls across all methods.
func (c *TokenChain) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// --- contract.Backend ---

func (c *TokenChain) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(ChainID), ctx.Err()
}

func (c *TokenChain) GasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), ctx.Err()
}

func (c *TokenChain) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block, ctx.Err()
}

func (c *TokenChain) PendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], ctx.Err()
}

func (c *TokenChain) EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.estimateErr != nil {
		return 0, c.estimateErr
	}
	return 60000, ctx.Err()
}

func (c *TokenChain) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.callErr != nil {
		return nil, c.callErr
	}
	if to != c.address {
		return nil, nil
	}
	method, args, err := c.decode(data)
	if err != nil {
		return nil, err
	}
	c.calls[method.Name]++

	var out []interface{}
	switch method.Name {
	case "name":
		out = []interface{}{c.name}
	case "symbol":
		out = []interface{}{c.symbol}
	case "decimals":
		out = []interface{}{uint8(18)}
	case "totalSupply":
		out = []interface{}{new(big.Int).Set(c.supply)}
	case "owner":
		out = []interface{}{c.owner}
	case "balanceOf":
		out = []interface{}{new(big.Int).Set(c.balanceOf(args[0].(common.Address)))}
	default:
		return nil, &chain.RPCError{Code: 3, Message: "execution reverted"}
	}
	return method.Outputs.Pack(out...)
}

func (c *TokenChain) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, &chain.RPCError{Code: -32602, Message: "invalid transaction: " + err.Error()}
	}
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(ChainID)), &tx)
	if err != nil {
		return common.Hash{}, &chain.RPCError{Code: -32000, Message: "invalid sender: " + err.Error()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendErr != nil {
		return common.Hash{}, c.sendErr
	}
	if tx.To() == nil || *tx.To() != c.address {
		return common.Hash{}, &chain.RPCError{Code: -32000, Message: "unknown contract"}
	}
	if tx.Nonce() != c.nonces[from] {
		return common.Hash{}, &chain.RPCError{Code: -32000, Message: fmt.Sprintf("nonce too low: have %d want %d", tx.Nonce(), c.nonces[from])}
	}
	method, args, err := c.decode(tx.Data())
	if err != nil {
		return common.Hash{}, err
	}

	sent := SentTx{
		Hash:   tx.Hash(),
		From:   from,
		Nonce:  tx.Nonce(),
		Gas:    tx.Gas(),
		Method: method.Name,
		Args:   args,
	}
	c.nonces[from]++
	c.block++
	c.sent = append(c.sent, sent)

	status := uint64(1)
	if (c.revert != nil && c.revert(sent)) || !c.apply(sent) {
		status = 0
	}
	c.receipts[sent.Hash] = &chain.TxReceipt{
		Hash:        sent.Hash,
		Status:      status,
		BlockNumber: c.block,
		GasUsed:     tx.Gas() / 2,
	}
	return sent.Hash, nil
}

// Receipt returns the receipt for hash, if mined.
func (c *TokenChain) Receipt(hash common.Hash) (*chain.TxReceipt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	return r, ok
}

func (c *TokenChain) WaitForReceipt(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error) {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waitErr != nil {
		return nil, c.waitErr
	}
	r, ok := c.receipts[hash]
	if !ok {
		return nil, fmt.Errorf("%w: unknown transaction %s", chain.ErrNetwork, hash.Hex())
	}
	if r.Status == 0 {
		return r, fmt.Errorf("%w (hash: %s)", chain.ErrTxReverted, hash.Hex())
	}
	return r, nil
}

// --- internal; callers hold c.mu ---

func (c *TokenChain) decode(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, &chain.RPCError{Code: 3, Message: "execution reverted: no selector"}
	}
	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, nil, &chain.RPCError{Code: 3, Message: "execution reverted: unknown selector"}
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, &chain.RPCError{Code: -32602, Message: "bad calldata: " + err.Error()}
	}
	return method, args, nil
}

func (c *TokenChain) balanceOf(account common.Address) *big.Int {
	if b, ok := c.balances[account]; ok {
		return b
	}
	return new(big.Int)
}

// apply executes a state change and reports whether it succeeded.
func (c *TokenChain) apply(tx SentTx) bool {
	switch tx.Method {
	case "transfer":
		to, value := tx.Args[0].(common.Address), tx.Args[1].(*big.Int)
		from := c.balanceOf(tx.From)
		if from.Cmp(value) < 0 {
			return false
		}
		c.balances[tx.From] = new(big.Int).Sub(from, value)
		c.balances[to] = new(big.Int).Add(c.balanceOf(to), value)
	case "burn":
		value := tx.Args[0].(*big.Int)
		from := c.balanceOf(tx.From)
		if from.Cmp(value) < 0 {
			return false
		}
		c.balances[tx.From] = new(big.Int).Sub(from, value)
		c.supply = new(big.Int).Sub(c.supply, value)
	case "mint":
		if tx.From != c.owner {
			return false
		}
		to, value := tx.Args[0].(common.Address), tx.Args[1].(*big.Int)
		c.balances[to] = new(big.Int).Add(c.balanceOf(to), value)
		c.supply = new(big.Int).Add(c.supply, value)
	default:
		return false
	}
	return true
}

// ErrInjected is a convenience error for failure injection.
var ErrInjected = errors.New("injected failure")
