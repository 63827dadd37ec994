package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"passterm/solWallet/internal/blockchain"
	"passterm/solWallet/internal/builder"
	"passterm/solWallet/internal/config"
	"passterm/solWallet/internal/models"
	"passterm/solWallet/internal/pipeline"
	"passterm/solWallet/internal/signing"
	appsync "passterm/solWallet/internal/sync"
	"passterm/solWallet/internal/utils"
	"passterm/solWallet/internal/wallet"
)

type ViewState int

const (
	ViewConnect ViewState = iota
	ViewDashboard
	ViewSend
	ViewSwap
	ViewPay
)

type AppModel struct {
	state  ViewState
	width  int
	height int

	cfg      *config.Config
	logger   *zap.Logger
	signer   signing.Signer
	chain    *blockchain.Client
	builder  *builder.Builder
	pipeline *pipeline.Pipeline
	sync     *appsync.Synchronizer

	session models.Session

	connect   *ConnectModel
	dashboard *DashboardModel
	send      *SendModel
	swap      *SwapModel
	pay       *PayModel

	err error
}

type NavigateMsg struct {
	State ViewState
}

type ErrorMsg struct {
	Err error
}

// SessionResultMsg resolves a wallet connect attempt.
type SessionResultMsg struct {
	Session models.Session
	Err     error
}

// SessionClosedMsg resolves a disconnect.
type SessionClosedMsg struct{}

// RefreshRequestMsg asks for a balance and history refresh. The gate decides
// whether it actually runs.
type RefreshRequestMsg struct {
	Trigger appsync.Trigger
}

// RefreshResultMsg carries one refresh's fetched state back to the loop.
type RefreshResultMsg struct {
	Ticket uint64
	Result appsync.Result
}

// AutoRefreshMsg is the periodic refresh tick.
type AutoRefreshMsg struct{}

// SettleResyncMsg fires after the settle delay following a successful
// submission, so the refreshed balances reflect the landed transaction.
type SettleResyncMsg struct{}

// SubmitResultMsg resolves a sign-and-send attempt from any form view.
type SubmitResultMsg struct {
	Kind      models.IntentKind
	Signature string
	Err       error
}

type AirdropResultMsg struct {
	Signature string
	Err       error
}

func NewAppModel(cfg *config.Config, signer signing.Signer, chain *blockchain.Client, b *builder.Builder, p *pipeline.Pipeline, logger *zap.Logger) *AppModel {
	app := &AppModel{
		state:    ViewConnect,
		cfg:      cfg,
		logger:   logger.Named("views"),
		signer:   signer,
		chain:    chain,
		builder:  b,
		pipeline: p,
		sync:     appsync.New(cfg.RefreshCooldown, logger),
	}

	app.connect = NewConnectModel(cfg)

	return app
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.state == ViewSend || m.state == ViewSwap || m.state == ViewPay {
				return m.navigateTo(ViewDashboard)
			}
		}

	case NavigateMsg:
		return m.navigateTo(msg.State)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case ConnectRequestMsg:
		if m.connect != nil {
			m.connect.connecting = true
		}
		return m, m.connectWallet()

	case DisconnectRequestMsg:
		return m, m.disconnectWallet()

	case SessionResultMsg:
		if msg.Err != nil {
			if m.connect != nil {
				m.connect.SetError(wallet.Classify(msg.Err))
			}
			return m, nil
		}
		m.session = msg.Session
		m.dashboard = NewDashboardModel(m.cfg, m.sync, m.chain, msg.Session.Account)
		m.send = NewSendModel(m.cfg, m.sync, m.builder, m.pipeline, msg.Session.Account)
		m.swap = NewSwapModel(m.cfg, m.sync, m.builder, m.pipeline, msg.Session.Account)
		m.pay = NewPayModel(m.cfg, m.sync, m.builder, m.pipeline, msg.Session.Account)
		model, navCmd := m.navigateTo(ViewDashboard)
		// First refresh of a session bypasses the cooldown gate.
		return model, tea.Batch(navCmd,
			requestRefresh(appsync.TriggerInitial),
			m.scheduleAutoRefresh())

	case SessionClosedMsg:
		m.session = models.Session{Status: models.SessionDisconnected}
		m.sync.Reset()
		m.dashboard = nil
		m.send = nil
		m.swap = nil
		m.pay = nil
		m.connect = NewConnectModel(m.cfg)
		return m.navigateTo(ViewConnect)

	case RefreshRequestMsg:
		return m.handleRefreshRequest(msg.Trigger)

	case RefreshResultMsg:
		m.handleRefreshResult(msg)
		return m, nil

	case AutoRefreshMsg:
		if !m.session.Active() {
			return m, nil
		}
		// Keep the tick chain alive even while the breaker is open so a
		// re-arm does not need a new chain.
		cmds = append(cmds, m.scheduleAutoRefresh())
		if m.sync.TimerEnabled() {
			cmds = append(cmds, requestRefresh(appsync.TriggerTimer))
		}
		return m, tea.Batch(cmds...)

	case SettleResyncMsg:
		return m.handleRefreshRequest(appsync.TriggerInitial)

	case SubmitResultMsg:
		// Deliver to the owning form, not the active view: the user may have
		// navigated away while the submission was in flight, and only the
		// owner can release its pending lock.
		if msg.Err == nil {
			cmds = append(cmds, m.scheduleSettleResync())
		}
		switch msg.Kind {
		case models.IntentSend:
			if m.send != nil {
				*m.send, cmd = m.send.Update(msg)
			}
		case models.IntentSwap:
			if m.swap != nil {
				*m.swap, cmd = m.swap.Update(msg)
			}
		case models.IntentPay:
			if m.pay != nil {
				*m.pay, cmd = m.pay.Update(msg)
			}
		}
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case AirdropResultMsg:
		if msg.Err == nil {
			cmds = append(cmds, m.scheduleSettleResync())
		}
		if m.dashboard != nil {
			*m.dashboard, cmd = m.dashboard.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case CopyAddressMsg:
		if m.dashboard != nil {
			*m.dashboard, cmd = m.dashboard.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	// Session gate: only the connect view may run without an active session.
	if m.state != ViewConnect && !m.session.Active() {
		model, navCmd := m.navigateTo(ViewConnect)
		return model, tea.Batch(append(cmds, navCmd)...)
	}

	switch m.state {
	case ViewConnect:
		if m.connect != nil {
			*m.connect, cmd = m.connect.Update(msg)
		}
	case ViewDashboard:
		if m.dashboard != nil {
			*m.dashboard, cmd = m.dashboard.Update(msg)
		}
	case ViewSend:
		if m.send != nil {
			*m.send, cmd = m.send.Update(msg)
		}
	case ViewSwap:
		if m.swap != nil {
			*m.swap, cmd = m.swap.Update(msg)
		}
	case ViewPay:
		if m.pay != nil {
			*m.pay, cmd = m.pay.Update(msg)
		}
	}

	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string

	switch m.state {
	case ViewConnect:
		if m.connect != nil {
			content = m.connect.View()
		}
	case ViewDashboard:
		if m.dashboard != nil {
			content = m.dashboard.View()
		}
	case ViewSend:
		if m.send != nil {
			content = m.send.View()
		}
	case ViewSwap:
		if m.swap != nil {
			content = m.swap.View()
		}
	case ViewPay:
		if m.pay != nil {
			content = m.pay.View()
		}
	default:
		content = "Unknown view"
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red)).
			Bold(true).
			Padding(1)
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m AppModel) navigateTo(state ViewState) (tea.Model, tea.Cmd) {
	if state != ViewConnect && !m.session.Active() {
		state = ViewConnect
	}

	m.state = state
	m.err = nil

	return m, nil
}

func (m AppModel) handleRefreshRequest(trigger appsync.Trigger) (tea.Model, tea.Cmd) {
	if !m.session.Active() {
		return m, nil
	}

	if trigger == appsync.TriggerUser {
		// A deliberate user action re-arms a rate-limit-tripped timer.
		m.sync.EnableTimer()
	}

	ticket, err := m.sync.Begin(trigger, time.Now())
	if err != nil {
		var throttled *appsync.ThrottledError
		if errors.As(err, &throttled) && trigger == appsync.TriggerUser && m.dashboard != nil {
			m.dashboard.showFeedback(FeedbackWarning,
				fmt.Sprintf("Too soon: refresh available in %s", throttled.Wait.Round(time.Second)),
				3*time.Second)
		}
		return m, nil
	}

	if m.dashboard != nil {
		m.dashboard.refreshing = true
	}
	return m, m.fetchAccountState(ticket)
}

func (m *AppModel) handleRefreshResult(msg RefreshResultMsg) {
	applied, err := m.sync.Apply(msg.Ticket, msg.Result, time.Now())
	if m.dashboard == nil {
		return
	}

	m.dashboard.refreshing = false
	if err != nil {
		classified := wallet.Classify(err)
		m.dashboard.showFeedback(FeedbackError, classified.UserMessage(), 5*time.Second)
		return
	}
	if applied {
		m.dashboard.lastRefresh = time.Now()
	}
}

// fetchAccountState reads balances and recent history off the event loop.
// The whole fetch fails as a unit so a partial result never lands.
func (m AppModel) fetchAccountState(ticket uint64) tea.Cmd {
	account := m.session.Account
	chain := m.chain
	mint := m.cfg.TokenMint

	return func() tea.Msg {
		ctx := context.Background()
		var result appsync.Result

		native, err := chain.GetNativeBalance(ctx, account)
		if err != nil {
			result.Err = err
			return RefreshResultMsg{Ticket: ticket, Result: result}
		}
		result.Native = &native

		token, err := chain.GetTokenBalance(ctx, account, mint)
		if err != nil {
			result.Err = err
			return RefreshResultMsg{Ticket: ticket, Result: result}
		}
		result.Token = &token

		history, err := chain.GetRecentSignatures(ctx, account, models.HistoryWindow)
		if err != nil {
			result.Err = err
			return RefreshResultMsg{Ticket: ticket, Result: result}
		}
		result.History = history

		return RefreshResultMsg{Ticket: ticket, Result: result}
	}
}

func (m AppModel) scheduleAutoRefresh() tea.Cmd {
	return tea.Tick(m.cfg.RefreshInterval, func(t time.Time) tea.Msg {
		return AutoRefreshMsg{}
	})
}

func (m AppModel) scheduleSettleResync() tea.Cmd {
	return tea.Tick(m.cfg.SettleDelay, func(t time.Time) tea.Msg {
		return SettleResyncMsg{}
	})
}

func NavigateTo(state ViewState) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{State: state}
	}
}

func requestRefresh(trigger appsync.Trigger) tea.Cmd {
	return func() tea.Msg {
		return RefreshRequestMsg{Trigger: trigger}
	}
}

func (m AppModel) connectWallet() tea.Cmd {
	signer := m.signer
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		session, err := signer.Connect(ctx)
		return SessionResultMsg{Session: session, Err: err}
	}
}

func (m AppModel) disconnectWallet() tea.Cmd {
	signer := m.signer
	logger := m.logger
	return func() tea.Msg {
		if err := signer.Disconnect(context.Background()); err != nil {
			logger.Warn("disconnect failed", zap.Error(err))
		}
		return SessionClosedMsg{}
	}
}
