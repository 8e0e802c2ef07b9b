package token

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/units"
)

// Action is the kind of state change an intent asks for.
type Action int

const (
	ActionTransfer Action = iota + 1
	ActionBurn
	ActionMint
)

func (a Action) String() string {
	switch a {
	case ActionTransfer:
		return "transfer"
	case ActionBurn:
		return "burn"
	case ActionMint:
		return "mint"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// OwnerOnly reports whether the action is reserved for the contract owner.
func (a Action) OwnerOnly() bool { return a == ActionBurn || a == ActionMint }

// Intent is a user request to change token state. Amount is in decimal
// units. To is only read by transfers; mints always go to the current owner.
type Intent struct {
	Action Action
	To     string
	Amount string
}

// Transfer sends amount to the address to.
func Transfer(to, amount string) Intent {
	return Intent{Action: ActionTransfer, To: to, Amount: amount}
}

// Burn destroys amount from the caller's balance.
func Burn(amount string) Intent { return Intent{Action: ActionBurn, Amount: amount} }

// Mint creates amount for the contract owner.
func Mint(amount string) Intent { return Intent{Action: ActionMint, Amount: amount} }

func (i Intent) String() string {
	if i.Action == ActionTransfer {
		return fmt.Sprintf("transfer %s to %s", i.Amount, i.To)
	}
	return fmt.Sprintf("%s %s", i.Action, i.Amount)
}

// parsed is a validated intent.
type parsed struct {
	intent Intent
	value  *big.Int
	to     common.Address
}

// validate checks the intent without touching the network.
func (i Intent) validate() (parsed, error) {
	p := parsed{intent: i}
	switch i.Action {
	case ActionTransfer, ActionBurn, ActionMint:
	default:
		return p, &Error{Kind: KindInvalidAmount, Op: "submit", Err: fmt.Errorf("unknown action %d", int(i.Action))}
	}

	value, err := units.ToBaseUnits(i.Amount)
	if err != nil {
		return p, &Error{Kind: KindInvalidAmount, Op: i.Action.String(), Err: err}
	}
	p.value = value

	if i.Action == ActionTransfer {
		to := strings.TrimSpace(i.To)
		if !common.IsHexAddress(to) {
			return p, &Error{Kind: KindInvalidAddress, Op: "transfer", Err: fmt.Errorf("%w: %q", ErrInvalidAddress, i.To)}
		}
		p.to = common.HexToAddress(to)
	}
	return p, nil
}
