package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"passterm/solWallet/internal/config"
	"passterm/solWallet/internal/utils"
	"passterm/solWallet/internal/wallet"
)

// ConnectRequestMsg asks the app to open a wallet session.
type ConnectRequestMsg struct{}

// ConnectModel is the entry screen shown while no session is active.
type ConnectModel struct {
	cfg        *config.Config
	spinner    *utils.Spinner
	connecting bool
	err        *wallet.WalletError
}

func NewConnectModel(cfg *config.Config) *ConnectModel {
	return &ConnectModel{
		cfg:     cfg,
		spinner: utils.NewSpinner(),
	}
}

func (m *ConnectModel) SetError(err *wallet.WalletError) {
	m.connecting = false
	m.err = err
}

func (m ConnectModel) Update(msg tea.Msg) (ConnectModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", " ":
			if !m.connecting {
				m.err = nil
				return m, func() tea.Msg { return ConnectRequestMsg{} }
			}
		case "q":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ConnectModel) View() string {
	containerStyle := lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Blue))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true)

	subtleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render("solterm"))
	content.WriteString("\n\n")
	content.WriteString("Passkey wallet for Solana\n\n")
	content.WriteString(subtleStyle.Render(fmt.Sprintf("Endpoint: %s", m.cfg.RPCEndpoint)))
	content.WriteString("\n\n")

	if m.connecting {
		content.WriteString(fmt.Sprintf("%s Connecting...", m.spinner.View()))
	} else {
		content.WriteString("Press Enter to connect your wallet")
	}

	if m.err != nil {
		errStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red)).
			Bold(true)
		content.WriteString("\n\n")
		content.WriteString(errStyle.Render(fmt.Sprintf("%s: %s", m.err.Title(), m.err.UserMessage())))
	}

	content.WriteString("\n\n")
	content.WriteString(subtleStyle.Render("Enter: connect • q: quit"))

	return containerStyle.Render(content.String())
}
