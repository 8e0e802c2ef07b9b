package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func testWallet(t *testing.T, ks KeyStore) *Wallet {
	t.Helper()
	ref, err := ks.Store("testwal", testPrivKeyHex)
	require.NoError(t, err)
	return &Wallet{Name: "testwal", Address: common.HexToAddress(testSignerAddr), KeyRef: ref}
}

func testTx() *types.Transaction {
	to := common.HexToAddress("0x6d6B4CFBce429a63810a62007520a66e519d6662")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(31337),
		Nonce:     0,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       100000,
		To:        &to,
		Data:      []byte{0xa9, 0x05, 0x9c, 0xbb},
	})
}

func TestSignerAddress(t *testing.T) {
	ks := NewInMemoryKeystore()
	s := NewSigner(testWallet(t, ks), ks, nil)
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxRecoversSender(t *testing.T) {
	ks := NewInMemoryKeystore()
	s := NewSigner(testWallet(t, ks), ks, AutoApprove)

	raw, err := s.SignTx(testTx(), big.NewInt(31337), "transfer")
	require.NoError(t, err)

	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(raw))
	from, err := types.Sender(types.NewLondonSigner(big.NewInt(31337)), &decoded)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
}

func TestSignTxPromptDescribesCall(t *testing.T) {
	ks := NewInMemoryKeystore()
	var prompt string
	s := NewSigner(testWallet(t, ks), ks, func(p string) bool { prompt = p; return true })

	_, err := s.SignTx(testTx(), big.NewInt(31337), "burn(1.5)")
	require.NoError(t, err)
	assert.Contains(t, prompt, "burn(1.5)")
	assert.Contains(t, prompt, "testwal")
	assert.Contains(t, prompt, "31337")
}

func TestSignTxRejected(t *testing.T) {
	ks := NewInMemoryKeystore()
	s := NewSigner(testWallet(t, ks), ks, func(string) bool { return false })

	raw, err := s.SignTx(testTx(), big.NewInt(31337), "transfer")
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Nil(t, raw)
}

func TestSignTxMissingKey(t *testing.T) {
	ks := NewInMemoryKeystore()
	w := &Wallet{Name: "nokey", Address: common.HexToAddress(testSignerAddr), KeyRef: "tokenctl.nokey"}
	_, err := NewSigner(w, ks, nil).SignTx(testTx(), big.NewInt(1), "transfer")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSignTxDifferentChainIDs(t *testing.T) {
	ks := NewInMemoryKeystore()
	s := NewSigner(testWallet(t, ks), ks, nil)

	tx := types.NewTransaction(0, common.Address{1}, big.NewInt(0), 21000, big.NewInt(1e9), nil)
	rawMainnet, err := s.SignTx(tx, big.NewInt(1), "transfer")
	require.NoError(t, err)
	rawSepolia, err := s.SignTx(tx, big.NewInt(11155111), "transfer")
	require.NoError(t, err)

	assert.NotEqual(t, rawMainnet, rawSepolia, "same tx signed on different chains must differ")
}

func TestSignerWithFileKeystore(t *testing.T) {
	ks, err := OpenFileKeystore(t.TempDir(), "testpass")
	require.NoError(t, err)
	s := NewSigner(testWallet(t, ks), ks, nil)

	raw, err := s.SignTx(testTx(), big.NewInt(31337), "transfer")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
