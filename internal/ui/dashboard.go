package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/tokenctl/internal/token"
)

// Controller is the part of *token.Controller the dashboard drives.
type Controller interface {
	Start(ctx context.Context) error
	Snapshot() token.Snapshot
	Subscribe() (<-chan token.Snapshot, func())
	Submit(ctx context.Context, intent token.Intent) (*token.Task, error)
	Reload(ctx context.Context) error
}

// DashboardOptions wires the dashboard to a controller.
type DashboardOptions struct {
	Controller Controller
	// Approvals receives wallet prompts; nil means prompts are never shown.
	Approvals *ApprovalBridge
	// SwitchWallet moves the provider to the next account and returns its
	// name. Nil disables the w key.
	SwitchWallet func() (string, error)
	// TxURL links a hash to an explorer; may be nil.
	TxURL func(hash string) string
}

// Form fields. Every field owns its own input and value.
type field int

const (
	fieldTransferTo field = iota
	fieldTransferAmount
	fieldBurnAmount
	fieldMintAmount
	fieldCount
)

const noFocus field = -1

type (
	snapshotMsg token.Snapshot
	startedMsg  struct{ err error }
	reloadedMsg struct{ err error }
	submitMsg   struct {
		intent token.Intent
		task   *token.Task
		err    error
	}
	taskDoneMsg struct {
		task   *token.Task
		status token.Status
		err    error
	}
	walletMsg struct {
		name string
		err  error
	}
)

// DashboardModel is the Bubble Tea model for the live token dashboard.
type DashboardModel struct {
	ctx          context.Context
	ctrl         Controller
	approvals    *ApprovalBridge
	switchWallet func() (string, error)
	txURL        func(string) string

	snaps       <-chan token.Snapshot
	unsubscribe func()
	snap        token.Snapshot

	inputs   [fieldCount]textinput.Model
	focus    field
	spin     spinner.Model
	approval *approvalRequest

	flash    string
	flashErr bool
	quitting bool
}

// NewDashboard builds the model and subscribes to controller snapshots.
// Call Close once the program has exited.
func NewDashboard(ctx context.Context, opts DashboardOptions) DashboardModel {
	snaps, unsubscribe := opts.Controller.Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorWarning)

	m := DashboardModel{
		ctx:          ctx,
		ctrl:         opts.Controller,
		approvals:    opts.Approvals,
		switchWallet: opts.SwitchWallet,
		txURL:        opts.TxURL,
		snaps:        snaps,
		unsubscribe:  unsubscribe,
		snap:         opts.Controller.Snapshot(),
		focus:        noFocus,
		spin:         sp,
	}
	m.inputs[fieldTransferTo] = newInput("To:     ", "0x…", 42)
	m.inputs[fieldTransferAmount] = newInput("Amount: ", "0.0", 40)
	m.inputs[fieldBurnAmount] = newInput("Amount: ", "0.0", 40)
	m.inputs[fieldMintAmount] = newInput("Amount: ", "0.0", 40)
	return m
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.PromptStyle = StyleMeta
	in.TextStyle = lipgloss.NewStyle().Foreground(ColorValue)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(ColorHighlight)
	in.CharLimit = limit
	in.Width = 44
	return in
}

// RunDashboard runs the dashboard until the user quits or ctx is done.
func RunDashboard(ctx context.Context, opts DashboardOptions) error {
	m := NewDashboard(ctx, opts)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Close unsubscribes from the controller and declines pending approvals.
func (m DashboardModel) Close() {
	m.unsubscribe()
	if m.approvals != nil {
		m.approvals.Close()
	}
}

func (m DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitSnapshot(), m.spin.Tick, m.start()}
	if m.approvals != nil {
		cmds = append(cmds, m.approvals.next())
	}
	return tea.Batch(cmds...)
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.snap = token.Snapshot(msg)
		if m.focus != noFocus && !m.visible(m.focus) {
			m.blur()
		}
		return m, m.waitSnapshot()

	case approvalMsg:
		req := approvalRequest(msg)
		m.approval = &req
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.setFlash(describeErr(msg.err), true)
		}
		return m, nil

	case reloadedMsg:
		if msg.err != nil {
			m.setFlash(describeErr(msg.err), true)
		} else {
			m.setFlash("Token state reloaded", false)
		}
		return m, nil

	case submitMsg:
		if msg.err != nil {
			m.setFlash(describeErr(msg.err), true)
			return m, nil
		}
		m.setFlash(fmt.Sprintf("Submitted %s", msg.intent), false)
		return m, waitTask(m.ctx, msg.task)

	case taskDoneMsg:
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("Task %d failed: %s", msg.task.ID, describeErr(msg.err)), true)
		} else {
			m.setFlash(fmt.Sprintf("Task %d confirmed: %s", msg.task.ID, msg.task.Intent), false)
		}
		return m, nil

	case walletMsg:
		if msg.err != nil {
			m.setFlash("Switch wallet: "+msg.err.Error(), true)
		} else {
			m.setFlash("Switched to wallet "+msg.name, false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.approval != nil {
		switch key {
		case "y", "Y":
			return m.answer(true)
		case "n", "N", "esc":
			return m.answer(false)
		case "ctrl+c":
			m.approval.reply <- false
			m.approval = nil
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.focus != noFocus {
		switch key {
		case "esc":
			m.blur()
			return m, nil
		case "tab", "down":
			return m, m.focusField(m.step(1))
		case "shift+tab", "up":
			return m, m.focusField(m.step(-1))
		case "enter":
			return m.submit()
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "t":
		return m, m.focusField(fieldTransferTo)
	case "b":
		if m.snap.IsOwner {
			return m, m.focusField(fieldBurnAmount)
		}
	case "m":
		if m.snap.IsOwner {
			return m, m.focusField(fieldMintAmount)
		}
	case "r":
		return m, m.reload()
	case "w":
		if m.switchWallet != nil {
			return m, switchWallet(m.switchWallet)
		}
	}
	return m, nil
}

func (m DashboardModel) answer(ok bool) (tea.Model, tea.Cmd) {
	m.approval.reply <- ok
	m.approval = nil
	if m.approvals == nil {
		return m, nil
	}
	return m, m.approvals.next()
}

// submit sends the form that owns the focused field.
func (m DashboardModel) submit() (tea.Model, tea.Cmd) {
	var intent token.Intent
	var clear []field
	switch m.focus {
	case fieldTransferTo, fieldTransferAmount:
		intent = token.Transfer(m.inputs[fieldTransferTo].Value(), m.inputs[fieldTransferAmount].Value())
		clear = []field{fieldTransferAmount}
	case fieldBurnAmount:
		intent = token.Burn(m.inputs[fieldBurnAmount].Value())
		clear = []field{fieldBurnAmount}
	case fieldMintAmount:
		intent = token.Mint(m.inputs[fieldMintAmount].Value())
		clear = []field{fieldMintAmount}
	default:
		return m, nil
	}
	for _, f := range clear {
		m.inputs[f].SetValue("")
	}

	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		task, err := ctrl.Submit(ctx, intent)
		return submitMsg{intent: intent, task: task, err: err}
	}
}

func (m DashboardModel) visible(f field) bool {
	switch f {
	case fieldBurnAmount, fieldMintAmount:
		return m.snap.IsOwner
	case fieldTransferTo, fieldTransferAmount:
		return true
	}
	return false
}

// step returns the next visible field in direction dir, wrapping around.
func (m DashboardModel) step(dir int) field {
	f := m.focus
	for range fieldCount {
		f = (f + field(dir) + fieldCount) % fieldCount
		if m.visible(f) {
			return f
		}
	}
	return m.focus
}

func (m *DashboardModel) focusField(f field) tea.Cmd {
	m.blur()
	m.focus = f
	return m.inputs[f].Focus()
}

func (m *DashboardModel) blur() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = noFocus
}

func (m *DashboardModel) setFlash(msg string, isErr bool) {
	m.flash, m.flashErr = msg, isErr
}

// --- commands ---

func (m DashboardModel) waitSnapshot() tea.Cmd {
	ch := m.snaps
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m DashboardModel) start() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg { return startedMsg{err: ctrl.Start(ctx)} }
}

func (m DashboardModel) reload() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg { return reloadedMsg{err: ctrl.Reload(ctx)} }
}

func waitTask(ctx context.Context, task *token.Task) tea.Cmd {
	return func() tea.Msg {
		status, err := task.Wait(ctx)
		return taskDoneMsg{task: task, status: status, err: err}
	}
}

func switchWallet(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		name, err := fn()
		return walletMsg{name: name, err: err}
	}
}

func describeErr(err error) string {
	if k := token.KindOf(err); k != token.KindNone {
		return k.String() + ": " + err.Error()
	}
	return err.Error()
}

// --- view ---

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.snap

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("◆ ReveCoin dashboard") + "  " + ChainName(s.Network) + "\n")

	tokenPairs := [][2]string{{"Contract", s.Contract.Hex()}}
	if s.Metadata.Loaded {
		tokenPairs = append(tokenPairs,
			[2]string{"Name", s.Metadata.Name},
			[2]string{"Symbol", s.Metadata.Symbol},
			[2]string{"Total supply", s.Metadata.TotalSupply + " " + s.Metadata.Symbol},
			[2]string{"Owner", s.Metadata.Owner.Hex()},
		)
	} else {
		tokenPairs = append(tokenPairs, [2]string{"Metadata", "not loaded"})
	}

	walletPairs := [][2]string{{"Wallet", "disconnected"}}
	if s.Connection.Connected {
		role := "holder"
		if s.IsOwner {
			role = "owner"
		}
		walletPairs = [][2]string{
			{"Account", s.Connection.Address.Hex()},
			{"Privilege", role},
		}
	}

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		KeyValueBlock("Token", tokenPairs), " ", KeyValueBlock("Wallet", walletPairs)) + "\n")

	sb.WriteString(m.statusLine() + "\n")
	if s.LastError != nil {
		sb.WriteString(Err(fmt.Sprintf("last error (%s): %s", s.LastError.Kind, s.LastError.Message)) + "\n")
	}
	sb.WriteString("\n")

	forms := []string{m.form("Transfer", fieldTransferTo, fieldTransferAmount)}
	if s.IsOwner {
		forms = append(forms,
			m.form("Burn", fieldBurnAmount),
			m.form("Mint to owner", fieldMintAmount))
	}
	sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, forms...) + "\n")

	if m.approval != nil {
		box := StyleFocusBorder.Render(StyleWarning.Render("Wallet approval") + "\n" +
			m.approval.prompt + "\n\n" + Meta("[y] approve   [n] reject"))
		sb.WriteString(box + "\n")
	}

	if m.flash != "" {
		if m.flashErr {
			sb.WriteString(Err(m.flash) + "\n")
		} else {
			sb.WriteString(Success(m.flash) + "\n")
		}
	}

	sb.WriteString(Meta(m.help()))
	return sb.String()
}

func (m DashboardModel) statusLine() string {
	st := m.snap.Status
	label := "Status: "
	switch st.Phase {
	case token.PhasePending:
		line := m.spin.View() + " " + StyleWarning.Render(label+st.String())
		return line + "  " + Meta(st.Intent.String())
	case token.PhaseConfirmed:
		line := StyleSuccess.Render(label+st.String()) + "  " + Meta(st.Intent.String())
		if m.txURL != nil {
			if u := m.txURL(st.Hash.Hex()); u != "" {
				line += "\n" + Meta(u)
			}
		}
		return line
	case token.PhaseFailed:
		return StyleError.Render(label + st.String())
	}
	return Meta(label + st.String())
}

func (m DashboardModel) form(title string, fields ...field) string {
	style := StyleBorder
	lines := []string{StyleHeader.Render(title)}
	for _, f := range fields {
		if f == m.focus {
			style = StyleFocusBorder
		}
		lines = append(lines, m.inputs[f].View())
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) help() string {
	if m.approval != nil {
		return "y approve · n reject"
	}
	if m.focus != noFocus {
		return "enter submit · tab next field · esc leave form"
	}
	keys := []string{"t transfer"}
	if m.snap.IsOwner {
		keys = append(keys, "b burn", "m mint")
	}
	keys = append(keys, "r reload")
	if m.switchWallet != nil {
		keys = append(keys, "w switch wallet")
	}
	keys = append(keys, "q quit")
	return strings.Join(keys, " · ")
}
