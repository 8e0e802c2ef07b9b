package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ApprovalBridge routes wallet approval prompts from background goroutines
// into the dashboard, which owns the terminal while it runs.
type ApprovalBridge struct {
	requests chan approvalRequest
	done     chan struct{}
	once     sync.Once
}

type approvalRequest struct {
	prompt string
	reply  chan bool
}

// approvalMsg delivers one pending request to the model.
type approvalMsg approvalRequest

// NewApprovalBridge returns an open bridge.
func NewApprovalBridge() *ApprovalBridge {
	return &ApprovalBridge{
		requests: make(chan approvalRequest),
		done:     make(chan struct{}),
	}
}

// Approve blocks until the user answers prompt in the dashboard. It has the
// wallet.Approver signature. After Close every request is declined.
func (b *ApprovalBridge) Approve(prompt string) bool {
	req := approvalRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case b.requests <- req:
	case <-b.done:
		return false
	}
	select {
	case ok := <-req.reply:
		return ok
	case <-b.done:
		return false
	}
}

// Close declines pending and future requests.
func (b *ApprovalBridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// next waits for the following request.
func (b *ApprovalBridge) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-b.requests:
			return approvalMsg(req)
		case <-b.done:
			return nil
		}
	}
}
