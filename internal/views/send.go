package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"

	"passterm/solWallet/internal/builder"
	"passterm/solWallet/internal/config"
	"passterm/solWallet/internal/models"
	"passterm/solWallet/internal/pipeline"
	"passterm/solWallet/internal/signing"
	appsync "passterm/solWallet/internal/sync"
	"passterm/solWallet/internal/utils"
	"passterm/solWallet/internal/validation"
	"passterm/solWallet/internal/wallet"
)

// SendModel is the direct SOL transfer form.
type SendModel struct {
	cfg      *config.Config
	sync     *appsync.Synchronizer
	builder  *builder.Builder
	pipeline *pipeline.Pipeline
	account  solana.PublicKey

	recipientInput textinput.Model
	amountInput    textinput.Model
	focusIndex     int

	pending    bool
	lastAmount string
	spinner    *utils.Spinner
	feedback   *FeedbackMessage
}

func NewSendModel(cfg *config.Config, sync *appsync.Synchronizer, b *builder.Builder, p *pipeline.Pipeline, account solana.PublicKey) *SendModel {
	recipient := textinput.New()
	recipient.Placeholder = "Recipient address"
	recipient.CharLimit = 44
	recipient.Width = 48
	recipient.Focus()

	amount := textinput.New()
	amount.Placeholder = "Amount (SOL)"
	amount.CharLimit = 20
	amount.Width = 24

	return &SendModel{
		cfg:            cfg,
		sync:           sync,
		builder:        b,
		pipeline:       p,
		account:        account,
		recipientInput: recipient,
		amountInput:    amount,
		spinner:        utils.NewSpinner(),
	}
}

func (m SendModel) Update(msg tea.Msg) (SendModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pending {
			// One submission at a time. The form stays locked until the
			// in-flight attempt resolves.
			return m, nil
		}

		switch msg.String() {
		case "tab", "down":
			m.focusIndex = (m.focusIndex + 1) % 2
			m.applyFocus()
			return m, nil
		case "shift+tab", "up":
			m.focusIndex = (m.focusIndex + 1) % 2
			m.applyFocus()
			return m, nil
		case "enter":
			if m.focusIndex == 0 {
				m.focusIndex = 1
				m.applyFocus()
				return m, nil
			}
			return m.submit()
		}

	case SubmitResultMsg:
		if msg.Kind != models.IntentSend {
			break
		}
		m.pending = false
		if msg.Err != nil {
			classified := wallet.Classify(msg.Err)
			m.showFeedback(FeedbackError, fmt.Sprintf("%s: %s", classified.Title(), classified.UserMessage()), 6*time.Second)
		} else {
			m.showFeedback(FeedbackSuccess,
				fmt.Sprintf("Sent %s SOL: %s", m.lastAmount, utils.FormatSignature(msg.Signature)),
				6*time.Second)
			m.recipientInput.SetValue("")
			m.amountInput.SetValue("")
			m.focusIndex = 0
			m.applyFocus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.recipientInput, cmd = m.recipientInput.Update(msg)
	cmds = append(cmds, cmd)
	m.amountInput, cmd = m.amountInput.Update(msg)
	cmds = append(cmds, cmd)

	if m.feedback != nil && m.feedback.Expired() {
		m.feedback = nil
	}

	return m, tea.Batch(cmds...)
}

func (m SendModel) submit() (SendModel, tea.Cmd) {
	intent := models.TransferIntent{
		Recipient:     m.recipientInput.Value(),
		AmountDecimal: m.amountInput.Value(),
	}

	validated, err := validation.ValidateTransfer(intent, m.sync.Snapshot())
	if err != nil {
		classified := wallet.Classify(err)
		m.showFeedback(FeedbackError, fmt.Sprintf("%s: %s", classified.Title(), classified.UserMessage()), 6*time.Second)
		return m, nil
	}

	m.pending = true
	m.lastAmount = validation.FromBaseUnits(validated.BaseUnits, models.SOLDecimals)
	m.showFeedback(FeedbackInfo, "Waiting for wallet approval...", 30*time.Second)

	payload := m.builder.BuildTransfer(m.account, validated)
	pipe := m.pipeline
	timeout := m.cfg.RequestTimeout

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sig, err := pipe.Submit(ctx, payload, signing.SendOptions{FeeAsset: models.AssetSOL})
		return SubmitResultMsg{Kind: models.IntentSend, Signature: sig, Err: err}
	}
}

func (m *SendModel) applyFocus() {
	if m.focusIndex == 0 {
		m.recipientInput.Focus()
		m.amountInput.Blur()
	} else {
		m.recipientInput.Blur()
		m.amountInput.Focus()
	}
}

func (m SendModel) View() string {
	containerStyle := lipgloss.NewStyle().
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Green))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Green)).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext1))

	subtleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render("Send SOL"))
	content.WriteString("\n\n")

	snapshot := m.sync.Snapshot()
	content.WriteString(labelStyle.Render(fmt.Sprintf("Available: %s", utils.FormatBalance(snapshot.Native, models.AssetSOL))))
	content.WriteString("\n\n")

	content.WriteString(labelStyle.Render("Recipient"))
	content.WriteString("\n")
	content.WriteString(m.recipientInput.View())
	content.WriteString("\n\n")
	content.WriteString(labelStyle.Render("Amount"))
	content.WriteString("\n")
	content.WriteString(m.amountInput.View())
	content.WriteString("\n\n")

	if m.pending {
		content.WriteString(fmt.Sprintf("%s Submitting...", m.spinner.View()))
		content.WriteString("\n\n")
	}

	content.WriteString(subtleStyle.Render("Enter: send • Tab: next field • Esc: back"))

	if m.feedback != nil {
		content.WriteString("\n\n")
		content.WriteString(m.feedback.Render())
	}

	return containerStyle.Render(content.String())
}

func (m *SendModel) showFeedback(feedbackType FeedbackType, message string, duration time.Duration) {
	m.feedback = newFeedback(feedbackType, message, duration)
}
