package token

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/tokenctl/internal/contract"
)

// Task is one submitted intent. It completes exactly once.
type Task struct {
	ID     uint64
	Intent Intent

	done   chan struct{}
	status Status
	err    error
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done. The returned status is
// Confirmed or Failed; err is nil only for Confirmed.
func (t *Task) Wait(ctx context.Context) (Status, error) {
	select {
	case <-t.done:
		return t.status, t.err
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (t *Task) finish(s Status, err error) {
	t.status, t.err = s, err
	close(t.done)
}

// Submitter sends intents to the contract and tracks their lifecycle.
type Submitter struct {
	st     *store
	reader *Reader
	log    *log.Logger

	seq atomic.Uint64
	wg  sync.WaitGroup
}

// Submit validates intent, marks it Pending and runs it on its own
// goroutine under ctx. Validation failures return an error and leave the
// status untouched. Submissions may overlap; Status always follows the most
// recent one.
func (s *Submitter) Submit(ctx context.Context, intent Intent) (*Task, error) {
	p, err := intent.validate()
	if err != nil {
		return nil, err
	}
	op := intent.Action.String()

	snap := s.st.get()
	h := s.st.contractHandle()
	if h == nil {
		return nil, &Error{Kind: KindNotConnected, Op: op, Err: ErrNotConnected}
	}
	if intent.Action.OwnerOnly() && !snap.IsOwner {
		return nil, &Error{Kind: KindNotOwner, Op: op, Err: ErrNotOwner}
	}

	t := &Task{ID: s.seq.Add(1), Intent: intent, done: make(chan struct{})}
	s.st.begin(t.ID, intent)
	s.log.Info("submitting", "task", t.ID, "intent", intent.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, t, h, p)
	}()
	return t, nil
}

func (s *Submitter) run(ctx context.Context, t *Task, h *contract.Handle, p parsed) {
	op := p.intent.Action.String()

	var args []interface{}
	switch p.intent.Action {
	case ActionTransfer:
		args = []interface{}{p.to, p.value}
	case ActionBurn:
		args = []interface{}{p.value}
	case ActionMint:
		owner, err := s.reader.RefreshOwner(ctx)
		if err != nil {
			s.fail(t, common.Hash{}, wrap(op, err))
			return
		}
		if owner != h.From() {
			s.fail(t, common.Hash{}, &Error{Kind: KindNotOwner, Op: op, Err: ErrNotOwner})
			return
		}
		args = []interface{}{owner, p.value}
	}

	hash, err := h.Transact(ctx, op, args...)
	if err != nil {
		s.fail(t, common.Hash{}, wrap(op, err))
		return
	}
	s.st.transition(t.ID, func(st *Status) { st.Hash = hash })
	s.log.Info("transaction sent", "task", t.ID, "hash", hash.Hex())

	receipt, err := h.Wait(ctx, hash)
	if err != nil {
		s.fail(t, hash, wrap(op, err))
		return
	}

	confirmed := Status{Phase: PhaseConfirmed, TaskID: t.ID, Intent: t.Intent, Hash: hash}
	s.st.transition(t.ID, func(st *Status) { *st = confirmed })
	s.log.Info("transaction confirmed", "task", t.ID, "hash", hash.Hex(), "block", receipt.BlockNumber)

	if t.Intent.Action.OwnerOnly() {
		if err := s.reader.RefreshSupply(ctx); err != nil {
			s.st.update(func(snap *Snapshot) { snap.LastError = failureOf(err) })
		}
	}
	t.finish(confirmed, nil)
}

func (s *Submitter) fail(t *Task, hash common.Hash, err error) {
	failed := Status{
		Phase:  PhaseFailed,
		TaskID: t.ID,
		Intent: t.Intent,
		Hash:   hash,
		Kind:   KindOf(err),
		Reason: err.Error(),
	}
	if !s.st.transition(t.ID, func(st *Status) { *st = failed }) {
		s.log.Debug("stale task finished", "task", t.ID)
	}
	s.st.update(func(snap *Snapshot) { snap.LastError = failureOf(err) })
	s.log.Error("transaction failed", "task", t.ID, "kind", failed.Kind, "err", err)
	t.finish(failed, err)
}

// wait blocks until every running task has finished.
func (s *Submitter) wait() { s.wg.Wait() }

func failureOf(err error) *Failure {
	if err == nil {
		return nil
	}
	f := &Failure{Kind: KindOf(err), Message: err.Error()}
	var te *Error
	if errors.As(err, &te) {
		f.Op = te.Op
	}
	return f
}
