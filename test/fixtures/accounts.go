package fixtures

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

// Account is a well-known Hardhat/Anvil development account. Never fund on mainnet.
type Account struct {
	Name    string
	Key     string
	Address common.Address
}

var (
	Owner = Account{
		Name:    "owner",
		Key:     "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		Address: common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	}
	Holder = Account{
		Name:    "holder",
		Key:     "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
		Address: common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	}
)

// NewProvider builds an in-memory wallet provider holding accounts; the first
// is active.
func NewProvider(t *testing.T, approve wallet.Approver, accounts ...Account) *wallet.Provider {
	t.Helper()
	if len(accounts) == 0 {
		accounts = []Account{Owner, Holder}
	}
	mgr := wallet.NewManager()
	for _, a := range accounts {
		_, err := mgr.Import(a.Name, a.Key)
		require.NoError(t, err)
	}
	p, err := wallet.NewProvider(mgr, approve, accounts[0].Name)
	require.NoError(t, err)
	return p
}
