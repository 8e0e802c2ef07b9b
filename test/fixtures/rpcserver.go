package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
)

// Serve starts an httptest JSON-RPC server in front of c, closed on cleanup.
func Serve(t *testing.T, c *TokenChain) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(c)
	t.Cleanup(srv.Close)
	return srv
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int               `json:"id"`
}

type callMsg struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// ServeHTTP answers the JSON-RPC methods chain.EVMClient uses.
func (c *TokenChain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	result, err := c.dispatch(r.Context(), req)

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	var rpcErr *chain.RPCError
	switch {
	case errors.As(err, &rpcErr):
		resp["error"] = rpcErr
	case err != nil:
		resp["error"] = &chain.RPCError{Code: -32000, Message: err.Error()}
	default:
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (c *TokenChain) dispatch(ctx context.Context, req rpcRequest) (interface{}, error) {
	param := func(i int, v interface{}) error {
		if i >= len(req.Params) {
			return &chain.RPCError{Code: -32602, Message: "missing params"}
		}
		return json.Unmarshal(req.Params[i], v)
	}

	switch req.Method {
	case "eth_chainId":
		id, err := c.ChainID(ctx)
		return (*hexutil.Big)(id), err
	case "eth_blockNumber":
		n, err := c.BlockNumber(ctx)
		return hexutil.Uint64(n), err
	case "eth_gasPrice":
		p, err := c.GasPrice(ctx)
		return (*hexutil.Big)(p), err
	case "eth_getTransactionCount":
		var account common.Address
		if err := param(0, &account); err != nil {
			return nil, err
		}
		n, err := c.PendingNonce(ctx, account)
		return hexutil.Uint64(n), err
	case "eth_estimateGas":
		var msg callMsg
		if err := param(0, &msg); err != nil {
			return nil, err
		}
		g, err := c.EstimateGas(ctx, msg.From, msg.To, msg.Data)
		return hexutil.Uint64(g), err
	case "eth_call":
		var msg callMsg
		if err := param(0, &msg); err != nil {
			return nil, err
		}
		out, err := c.CallContract(ctx, msg.To, msg.Data)
		return hexutil.Bytes(out), err
	case "eth_sendRawTransaction":
		var raw hexutil.Bytes
		if err := param(0, &raw); err != nil {
			return nil, err
		}
		return c.SendRawTransaction(ctx, raw)
	case "eth_getTransactionReceipt":
		var hash common.Hash
		if err := param(0, &hash); err != nil {
			return nil, err
		}
		c.mu.Lock()
		held := c.gate != nil
		c.mu.Unlock()
		r, ok := c.Receipt(hash)
		if !ok || held {
			return nil, nil
		}
		return map[string]interface{}{
			"transactionHash": r.Hash,
			"status":          hexutil.Uint64(r.Status),
			"blockNumber":     hexutil.Uint64(r.BlockNumber),
			"gasUsed":         hexutil.Uint64(r.GasUsed),
		}, nil
	}
	return nil, &chain.RPCError{Code: -32601, Message: "method not found: " + req.Method}
}
