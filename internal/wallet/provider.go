package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Provider errors.
var (
	ErrProviderUnavailable = errors.New("no wallet provider available")
	ErrUserRejected        = errors.New("user rejected the request")
	ErrNotAuthorized       = errors.New("account access not granted")
)

// Approver asks the user a yes/no question.
type Approver func(prompt string) bool

// AutoApprove approves every request.
func AutoApprove(string) bool { return true }

// Provider exposes one active wallet to the application, the way an
// extension wallet exposes the selected account to a dapp. Account access
// and every signature go through the approver.
type Provider struct {
	mgr     *Manager
	approve Approver

	mu      sync.Mutex
	active  *Wallet
	granted map[common.Address]bool
	subs    map[int]chan []common.Address
	nextSub int
}

// NewProvider selects account (or the default wallet when empty) as the
// active account. It fails with ErrProviderUnavailable when no wallet exists.
func NewProvider(mgr *Manager, approve Approver, account string) (*Provider, error) {
	var (
		w   *Wallet
		err error
	)
	if account != "" {
		w, err = mgr.Get(account)
		if err != nil {
			return nil, err
		}
	} else {
		w = mgr.Default()
	}
	if w == nil {
		return nil, fmt.Errorf("%w: no wallet configured (run `tokenctl wallet add`)", ErrProviderUnavailable)
	}
	return &Provider{
		mgr:     mgr,
		approve: approve,
		active:  w,
		granted: make(map[common.Address]bool),
		subs:    make(map[int]chan []common.Address),
	}, nil
}

// RequestAccounts asks the user to grant access to the active account.
// Once granted the call returns immediately.
func (p *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	w := p.active
	granted := p.granted[w.Address]
	p.mu.Unlock()

	if granted {
		return []common.Address{w.Address}, nil
	}

	prompt := fmt.Sprintf("Allow tokenctl to use account %s (%s)?", w.Name, w.Address.Hex())
	if p.approve != nil && !p.approve(prompt) {
		return nil, ErrUserRejected
	}

	p.mu.Lock()
	p.granted[w.Address] = true
	p.mu.Unlock()
	return []common.Address{w.Address}, nil
}

// Accounts returns the active account if access was granted, without prompting.
func (p *Provider) Accounts() []common.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.granted[p.active.Address] {
		return nil
	}
	return []common.Address{p.active.Address}
}

// Active returns the active wallet.
func (p *Provider) Active() *Wallet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Signer returns a signer for the active account.
func (p *Provider) Signer(ctx context.Context) (TxSigner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.granted[p.active.Address] {
		return nil, ErrNotAuthorized
	}
	return NewSigner(p.active, p.mgr.keyStore(), p.approve), nil
}

// SwitchAccount makes the named wallet active. Switching is a user action
// inside the wallet, so access to the new account counts as granted.
// Subscribers receive the new account list.
func (p *Provider) SwitchAccount(name string) error {
	w, err := p.mgr.Get(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = w
	p.granted[w.Address] = true
	p.notify([]common.Address{w.Address})
	return nil
}

// Revoke withdraws access to the active account and notifies subscribers
// with an empty account list.
func (p *Provider) Revoke() {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.granted, p.active.Address)
	p.notify(nil)
}

// SubscribeAccounts delivers account-change notifications. Only the latest
// undelivered notification is kept. The returned func unsubscribes and
// closes the channel.
func (p *Provider) SubscribeAccounts() (<-chan []common.Address, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan []common.Address, 1)
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}

// notify must be called with p.mu held.
func (p *Provider) notify(accounts []common.Address) {
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- accounts
	}
}
