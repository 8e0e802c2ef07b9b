package token

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/contract"
)

// Connection is the wallet connection state. Address is meaningful only
// while Connected.
type Connection struct {
	Connected bool
	Address   common.Address
}

// Metadata is what the reader knows about the token.
type Metadata struct {
	Loaded      bool
	Name        string
	Symbol      string
	TotalSupply string // decimal units
	Owner       common.Address
}

// Phase is the lifecycle position of the latest submission.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseConfirmed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "Pending"
	case PhaseConfirmed:
		return "Confirmed"
	case PhaseFailed:
		return "Failed"
	}
	return "Idle"
}

// Status describes the latest submission. Hash is zero until the node
// accepts the transaction.
type Status struct {
	Phase  Phase
	TaskID uint64
	Intent Intent
	Hash   common.Hash
	Kind   Kind   // set when Failed
	Reason string // set when Failed
}

// HasHash reports whether the node has accepted the transaction.
func (s Status) HasHash() bool { return s.Hash != (common.Hash{}) }

func (s Status) String() string {
	switch s.Phase {
	case PhasePending:
		if !s.HasHash() {
			return "Pending: waiting for wallet approval"
		}
		return "Pending: " + s.Hash.Hex()
	case PhaseConfirmed:
		return "Confirmed: " + s.Hash.Hex()
	case PhaseFailed:
		return fmt.Sprintf("Failed (%s): %s", s.Kind, s.Reason)
	}
	return "Idle"
}

// Failure is the last error recorded by the controller.
type Failure struct {
	Kind    Kind
	Op      string
	Message string
}

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	Version    uint64
	Network    string
	Contract   common.Address
	Connection Connection

	// Signer is the account the contract handle signs as; zero while unbound.
	Signer    common.Address
	Metadata  Metadata
	IsOwner   bool
	Status    Status
	LastError *Failure
}

// isOwner compares the connected address with the owner. common.Address is
// the decoded byte form, so hex casing never matters.
func isOwner(c Connection, m Metadata) bool {
	if !c.Connected || !m.Loaded || m.Owner == (common.Address{}) {
		return false
	}
	return c.Address == m.Owner
}

// store is the single state container. Every mutation runs under mu and is
// followed by a published snapshot.
type store struct {
	mu      sync.Mutex
	snap    Snapshot
	handle  *contract.Handle
	current uint64 // TaskID owning Status
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

func newStore(network string, address common.Address) *store {
	return &store{
		snap: Snapshot{Network: network, Contract: address},
		subs: make(map[int]chan Snapshot),
	}
}

func (s *store) get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// update applies fn, recomputes derived fields and publishes.
func (s *store) update(fn func(*Snapshot)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(fn)
}

// apply must be called with s.mu held.
func (s *store) apply(fn func(*Snapshot)) Snapshot {
	fn(&s.snap)
	if !s.snap.Connection.Connected {
		s.snap.Connection.Address = common.Address{}
		s.handle = nil
	}
	s.snap.Signer = common.Address{}
	if s.handle != nil {
		s.snap.Signer = s.handle.From()
	}
	s.snap.IsOwner = isOwner(s.snap.Connection, s.snap.Metadata)
	s.snap.Version++
	snap := s.snap
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	return snap
}

func (s *store) contractHandle() *contract.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// setConnection replaces the connection. A handle bound to another account
// is dropped until the next bind.
func (s *store) setConnection(c Connection) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil && s.handle.From() != c.Address {
		s.handle = nil
	}
	return s.apply(func(snap *Snapshot) { snap.Connection = c })
}

// setHandle installs h if the wallet is still connected as h's signer.
func (s *store) setHandle(h *contract.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.snap.Connection
	if !c.Connected || c.Address != h.From() {
		return false
	}
	s.handle = h
	s.apply(func(*Snapshot) {})
	return true
}

// begin makes id the submission that owns Status.
func (s *store) begin(id uint64, intent Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
	s.apply(func(snap *Snapshot) {
		snap.Status = Status{Phase: PhasePending, TaskID: id, Intent: intent}
	})
}

// transition updates Status only if id is still the latest submission.
func (s *store) transition(id uint64, fn func(*Status)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != id {
		return false
	}
	s.apply(func(snap *Snapshot) { fn(&snap.Status) })
	return true
}

func (s *store) subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snap

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

func (s *store) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
