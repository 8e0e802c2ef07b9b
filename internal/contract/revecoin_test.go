package contract_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/tokenctl/internal/contract"
)

func selector(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return hex.EncodeToString(h.Sum(nil))[:8]
}

func TestReveCoinSelectors(t *testing.T) {
	parsed := contract.ReveCoin()
	want := map[string]string{
		"name":        "06fdde03",
		"symbol":      "95d89b41",
		"decimals":    "313ce567",
		"totalSupply": "18160ddd",
		"balanceOf":   "70a08231",
		"owner":       "8da5cb5b",
		"transfer":    "a9059cbb",
		"burn":        "42966c68",
		"mint":        "40c10f19",
	}
	require.Len(t, parsed.Methods, len(want))
	for name, sel := range want {
		m, ok := parsed.Methods[name]
		require.True(t, ok, name)
		assert.Equal(t, sel, selector(m.Sig), m.Sig)
		assert.Equal(t, sel, hex.EncodeToString(m.ID), m.Sig)
	}
}

func TestDefaultAddress(t *testing.T) {
	assert.Equal(t, "0x6d6B4CFBce429a63810a62007520a66e519d6662", contract.DefaultAddress.Hex())
}

func TestReveCoinWriteMethods(t *testing.T) {
	parsed := contract.ReveCoin()
	for _, name := range []string{"transfer", "burn", "mint"} {
		assert.False(t, parsed.Methods[name].IsConstant(), name)
	}
	for _, name := range []string{"name", "symbol", "owner", "totalSupply"} {
		assert.True(t, parsed.Methods[name].IsConstant(), name)
	}
}
