package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"passterm/solWallet/internal/blockchain"
	"passterm/solWallet/internal/config"
	"passterm/solWallet/internal/models"
	appsync "passterm/solWallet/internal/sync"
	"passterm/solWallet/internal/utils"
	"passterm/solWallet/internal/wallet"

	"github.com/gagliardetto/solana-go"
)

// DisconnectRequestMsg asks the app to close the wallet session.
type DisconnectRequestMsg struct{}

type CopyAddressMsg struct {
	Err error
}

const airdropLamports = 1_000_000_000 // 1 SOL

type DashboardModel struct {
	cfg     *config.Config
	sync    *appsync.Synchronizer
	chain   *blockchain.Client
	account solana.PublicKey

	spinner        *utils.Spinner
	refreshing     bool
	airdropPending bool
	lastRefresh    time.Time

	selectedMenuItem int
	menuItems        []string
	feedback         *FeedbackMessage

	terminalWidth  int
	terminalHeight int
}

func NewDashboardModel(cfg *config.Config, sync *appsync.Synchronizer, chain *blockchain.Client, account solana.PublicKey) *DashboardModel {
	return &DashboardModel{
		cfg:     cfg,
		sync:    sync,
		chain:   chain,
		account: account,
		spinner: utils.NewSpinner(),
		menuItems: []string{
			"Send",
			"Swap",
			"Pay Merchant",
			"Request Test SOL",
			"Disconnect",
		},
	}
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.terminalWidth = msg.Width
		m.terminalHeight = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.selectedMenuItem > 0 {
				m.selectedMenuItem--
			}
		case "down", "j":
			if m.selectedMenuItem < len(m.menuItems)-1 {
				m.selectedMenuItem++
			}
		case "enter", " ":
			return m.selectMenuItem()
		case "r", "R":
			cmds = append(cmds, requestRefresh(appsync.TriggerUser))
		case "a", "A":
			if !m.airdropPending {
				m.airdropPending = true
				m.showFeedback(FeedbackInfo, "Requesting test SOL...", 3*time.Second)
				cmds = append(cmds, m.requestAirdrop())
			}
		case "c", "C":
			cmds = append(cmds, m.copyAddress())
		case "q":
			return m, tea.Quit
		case "?":
			m.showFeedback(FeedbackInfo, "r: refresh, a: airdrop, c: copy address, enter: select", 5*time.Second)
		}

	case CopyAddressMsg:
		if msg.Err != nil {
			m.showFeedback(FeedbackError, "Could not copy address", 3*time.Second)
		} else {
			m.showFeedback(FeedbackSuccess, "Address copied to clipboard", 3*time.Second)
		}

	case AirdropResultMsg:
		m.airdropPending = false
		if msg.Err != nil {
			classified := wallet.Classify(msg.Err)
			m.showFeedback(FeedbackError, classified.UserMessage(), 5*time.Second)
		} else {
			m.showFeedback(FeedbackSuccess,
				fmt.Sprintf("Airdrop submitted: %s", utils.FormatSignature(msg.Signature)),
				5*time.Second)
		}
	}

	if m.feedback != nil && m.feedback.Expired() {
		m.feedback = nil
	}

	return m, tea.Batch(cmds...)
}

func (m DashboardModel) selectMenuItem() (DashboardModel, tea.Cmd) {
	switch m.selectedMenuItem {
	case 0:
		return m, NavigateTo(ViewSend)
	case 1:
		return m, NavigateTo(ViewSwap)
	case 2:
		if !m.cfg.PaymentsEnabled() {
			err := wallet.NewMerchantNotConfiguredError()
			m.showFeedback(FeedbackError, err.UserMessage(), 5*time.Second)
			return m, nil
		}
		return m, NavigateTo(ViewPay)
	case 3:
		if !m.airdropPending {
			m.airdropPending = true
			m.showFeedback(FeedbackInfo, "Requesting test SOL...", 3*time.Second)
			return m, m.requestAirdrop()
		}
	case 4:
		return m, func() tea.Msg { return DisconnectRequestMsg{} }
	}
	return m, nil
}

func (m DashboardModel) View() string {
	containerStyle := lipgloss.NewStyle().
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Blue))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true).
		Align(lipgloss.Center)

	var content strings.Builder
	content.WriteString(titleStyle.Render("Wallet Dashboard"))
	content.WriteString("\n\n")

	content.WriteString(m.renderAddressSection())
	content.WriteString("\n\n")

	balanceCard := m.renderBalanceCard()
	historyCard := m.renderHistoryCard()
	if m.terminalWidth < 80 {
		content.WriteString(lipgloss.JoinVertical(lipgloss.Left, balanceCard, "", historyCard))
	} else {
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, balanceCard, "  ", historyCard))
	}
	content.WriteString("\n\n")

	content.WriteString(m.renderMenuSection())
	content.WriteString("\n\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true).
		Align(lipgloss.Center)
	content.WriteString(helpStyle.Render("↑/↓: navigate • Enter: select • r: refresh • a: airdrop • c: copy • q: quit"))

	if m.feedback != nil {
		content.WriteString("\n\n")
		content.WriteString(m.feedback.Render())
	}

	return containerStyle.Render(content.String())
}

func (m DashboardModel) renderAddressSection() string {
	addressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Background(lipgloss.Color(utils.Colours.Surface0)).
		Padding(0, 1)

	refreshText := "[Refresh]"
	if m.refreshing {
		refreshText = fmt.Sprintf("[%s]", m.spinner.View())
	}

	refreshStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Background(lipgloss.Color(utils.Colours.Surface1)).
		Padding(0, 1).
		Bold(true)

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		addressStyle.Render(fmt.Sprintf("Account: %s", utils.FormatAddress(m.account.String(), 10, 8))),
		" ",
		refreshStyle.Render(refreshText),
	)
}

func (m DashboardModel) renderBalanceCard() string {
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Green)).
		Padding(1).
		Width(m.cardWidth(30))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Green)).
		Bold(true).
		Align(lipgloss.Center)

	lineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text))

	ageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	snapshot := m.sync.Snapshot()

	var content strings.Builder
	content.WriteString(titleStyle.Render("Balances"))
	content.WriteString("\n\n")
	content.WriteString(lineStyle.Render(fmt.Sprintf("SOL:  %s", utils.FormatBalance(snapshot.Native, models.AssetSOL))))
	content.WriteString("\n")
	content.WriteString(lineStyle.Render(fmt.Sprintf("USDC: %s", utils.FormatBalance(snapshot.Token, models.AssetUSDC))))
	content.WriteString("\n\n")
	content.WriteString(ageStyle.Render(fmt.Sprintf("Updated: %s", utils.FormatTimeAgo(m.lastRefresh))))

	if !m.sync.TimerEnabled() {
		warnStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Yellow)).
			Italic(true)
		content.WriteString("\n")
		content.WriteString(warnStyle.Render("Auto-refresh paused (rate limited)"))
	}

	return cardStyle.Render(content.String())
}

func (m DashboardModel) renderHistoryCard() string {
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Mauve)).
		Padding(1).
		Width(m.cardWidth(40))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Mauve)).
		Bold(true).
		Align(lipgloss.Center)

	lineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text))

	subtleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render("Recent Transactions"))
	content.WriteString("\n\n")

	history := m.sync.History()
	if len(history) == 0 {
		content.WriteString(subtleStyle.Render("No transactions yet"))
	} else {
		for i, sig := range history {
			content.WriteString(lineStyle.Render(fmt.Sprintf("%d. %s", i+1, utils.FormatSignature(sig))))
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(subtleStyle.Render(fmt.Sprintf("Explorer: %s", utils.ExplorerURL(history[0], m.cluster()))))
	}

	return cardStyle.Render(content.String())
}

func (m DashboardModel) renderMenuSection() string {
	menuStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Mauve)).
		Padding(1)

	itemStyle := lipgloss.NewStyle().
		Padding(0, 2)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Green)).
		Background(lipgloss.Color(utils.Colours.Surface0)).
		Padding(0, 2).
		Bold(true)

	disabledStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Overlay0)).
		Padding(0, 2)

	var content strings.Builder
	for i, item := range m.menuItems {
		cursor := " "
		if m.selectedMenuItem == i {
			cursor = ">"
		}

		label := item
		style := itemStyle
		if i == 2 && !m.cfg.PaymentsEnabled() {
			label = item + " (not configured)"
			style = disabledStyle
		}
		if m.selectedMenuItem == i {
			style = selectedStyle
		}

		content.WriteString(style.Render(fmt.Sprintf("%s %s", cursor, label)))
		content.WriteString("\n")
	}

	return menuStyle.Render(content.String())
}

func (m DashboardModel) cardWidth(preferred int) int {
	if m.terminalWidth > 0 && m.terminalWidth < 80 {
		w := m.terminalWidth - 10
		if w < 20 {
			w = 20
		}
		return w
	}
	return preferred
}

func (m DashboardModel) cluster() string {
	switch {
	case strings.Contains(m.cfg.RPCEndpoint, "devnet"):
		return "devnet"
	case strings.Contains(m.cfg.RPCEndpoint, "testnet"):
		return "testnet"
	default:
		return "mainnet-beta"
	}
}

func (m DashboardModel) requestAirdrop() tea.Cmd {
	chain := m.chain
	account := m.account
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx := context.Background()
		sig, err := chain.RequestTestFunds(ctx, account, airdropLamports)
		if err != nil {
			return AirdropResultMsg{Err: err}
		}
		if err := chain.Confirm(ctx, sig, timeout); err != nil {
			return AirdropResultMsg{Signature: sig, Err: err}
		}
		return AirdropResultMsg{Signature: sig}
	}
}

func (m DashboardModel) copyAddress() tea.Cmd {
	account := m.account.String()
	return func() tea.Msg {
		return CopyAddressMsg{Err: utils.CopyToClipboard(account)}
	}
}

func (m *DashboardModel) showFeedback(feedbackType FeedbackType, message string, duration time.Duration) {
	m.feedback = newFeedback(feedbackType, message, duration)
}
