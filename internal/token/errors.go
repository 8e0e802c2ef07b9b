package token

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/tokenctl/internal/chain"
	"github.com/Mohsinsiddi/tokenctl/internal/units"
	"github.com/Mohsinsiddi/tokenctl/internal/wallet"
)

// Kind classifies controller failures.
type Kind int

const (
	KindNone Kind = iota
	KindProviderUnavailable
	KindUserRejected
	KindTransactionReverted
	KindNetwork
	KindInvalidAmount
	KindInvalidAddress
	KindNotOwner
	KindNotConnected
)

var kindNames = map[Kind]string{
	KindNone:                "None",
	KindProviderUnavailable: "ProviderUnavailable",
	KindUserRejected:        "UserRejected",
	KindTransactionReverted: "TransactionReverted",
	KindNetwork:             "NetworkError",
	KindInvalidAmount:       "InvalidAmount",
	KindInvalidAddress:      "InvalidAddress",
	KindNotOwner:            "NotOwner",
	KindNotConnected:        "NotConnected",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrNotConnected is returned when an operation needs a connected wallet.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrNotOwner is returned for owner-only intents from other accounts.
	ErrNotOwner = errors.New("connected account is not the contract owner")
	// ErrInvalidAddress is returned for malformed recipient addresses.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrNoAccounts is returned when the provider grants access to no account.
	ErrNoAccounts = errors.New("provider returned no accounts")
)

// Error is a classified controller failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, classifying unwrapped package errors.
// It returns KindNone for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, wallet.ErrUserRejected), errors.Is(err, ErrNoAccounts):
		return KindUserRejected
	case errors.Is(err, wallet.ErrNotAuthorized), errors.Is(err, ErrNotConnected):
		return KindNotConnected
	case errors.Is(err, chain.ErrTxReverted), errors.Is(err, chain.ErrExecutionReverted):
		return KindTransactionReverted
	case errors.Is(err, units.ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidAddress):
		return KindInvalidAddress
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	}
	// Transport failures, RPC errors, exhausted endpoints and cancellation.
	return KindNetwork
}

// wrap classifies err under op. Already classified errors keep their kind.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Err: err}
}
