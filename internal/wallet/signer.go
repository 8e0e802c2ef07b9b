package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TxSigner signs transactions on behalf of one account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int, summary string) ([]byte, error)
}

// Signer signs EVM transactions for a wallet after the user approves them.
type Signer struct {
	wallet  *Wallet
	keys    KeyStore
	approve Approver
}

// NewSigner creates a signer for the given wallet. A nil approver signs
// without asking.
func NewSigner(w *Wallet, ks KeyStore, approve Approver) *Signer {
	return &Signer{wallet: w, keys: ks, approve: approve}
}

// SignTx asks for approval, signs an EVM transaction and returns the raw
// signed bytes. summary describes the call to the user.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int, summary string) ([]byte, error) {
	if s.approve != nil {
		prompt := fmt.Sprintf("Sign %s from %s (%s) on chain %s?",
			summary, s.wallet.Name, s.wallet.Address.Hex(), chainID)
		if !s.approve(prompt) {
			return nil, ErrUserRejected
		}
	}

	hexKey, err := s.keys.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}
	return raw, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return s.wallet.Address
}
