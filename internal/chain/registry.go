package chain

import (
	"errors"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds the metadata needed to reach one EVM network.
type Chain struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	ChainID     int64    `json:"chain_id"`
	RPCs        []string `json:"rpcs"`
	Explorer    string   `json:"explorer"` // empty for local dev chains
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates the registry of networks the token can be reached on.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "sepolia", "localhost").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// TxURL returns the explorer link for a transaction hash, or "" when the
// chain has no explorer.
func (c *Chain) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return c.Explorer + "/tx/" + hash
}

// AddressURL returns the explorer link for an address, or "".
func (c *Chain) AddressURL(addr string) string {
	if c.Explorer == "" {
		return ""
	}
	return c.Explorer + "/address/" + addr
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			RPCs:     []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
			Explorer: "https://sepolia.etherscan.io",
		},
		{
			Name: "holesky", DisplayName: "Holesky", ChainID: 17000,
			RPCs:     []string{"https://ethereum-holesky-rpc.publicnode.com", "https://holesky.drpc.org"},
			Explorer: "https://holesky.etherscan.io",
		},
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1,
			RPCs:     []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			Explorer: "https://etherscan.io",
		},
		{
			Name: "localhost", DisplayName: "Local node (anvil / hardhat)", ChainID: 31337,
			RPCs: []string{"http://127.0.0.1:8545"},
		},
	}
}
