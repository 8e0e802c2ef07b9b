package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"sepolia", 11155111},
		{"holesky", 17000},
		{"ethereum", 1},
		{"localhost", 31337},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.chainID, c.ChainID)
		})
	}
}

func TestRegistryGetByNameIsCaseInsensitive(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("Sepolia")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", c.Name)
}

func TestRegistryGetUnknownChain(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("unknownchain")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestRegistryGetByChainID(t *testing.T) {
	c, err := chain.NewRegistry().GetByChainID(31337)
	require.NoError(t, err)
	assert.Equal(t, "localhost", c.Name)

	_, err = chain.NewRegistry().GetByChainID(999999)
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestAllChainsHaveRPC(t *testing.T) {
	for _, c := range chain.NewRegistry().All() {
		t.Run(c.Name, func(t *testing.T) {
			assert.NotEmpty(t, c.RPCs, "chain %s has no RPCs", c.Name)
		})
	}
}

func TestExplorerLinks(t *testing.T) {
	reg := chain.NewRegistry()

	sep, err := reg.GetByName("sepolia")
	require.NoError(t, err)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", sep.TxURL("0xabc"))
	assert.Equal(t, "https://sepolia.etherscan.io/address/0xdef", sep.AddressURL("0xdef"))

	local, err := reg.GetByName("localhost")
	require.NoError(t, err)
	assert.Empty(t, local.TxURL("0xabc"))
	assert.Empty(t, local.AddressURL("0xdef"))
}
