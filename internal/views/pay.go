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

// PayModel is the merchant payment form. The destination comes from
// configuration and is never editable here.
type PayModel struct {
	cfg      *config.Config
	sync     *appsync.Synchronizer
	builder  *builder.Builder
	pipeline *pipeline.Pipeline
	account  solana.PublicKey

	asset       models.Asset
	amountInput textinput.Model

	pending    bool
	lastAmount string
	spinner    *utils.Spinner
	feedback   *FeedbackMessage
}

func NewPayModel(cfg *config.Config, sync *appsync.Synchronizer, b *builder.Builder, p *pipeline.Pipeline, account solana.PublicKey) *PayModel {
	amount := textinput.New()
	amount.Placeholder = "Amount"
	amount.CharLimit = 20
	amount.Width = 24
	amount.Focus()

	return &PayModel{
		cfg:         cfg,
		sync:        sync,
		builder:     b,
		pipeline:    p,
		account:     account,
		asset:       models.AssetUSDC,
		amountInput: amount,
		spinner:     utils.NewSpinner(),
	}
}

func (m PayModel) Update(msg tea.Msg) (PayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}

		switch msg.String() {
		case "tab":
			if m.asset == models.AssetUSDC {
				m.asset = models.AssetSOL
			} else {
				m.asset = models.AssetUSDC
			}
			return m, nil
		case "enter":
			return m.submit()
		}

	case SubmitResultMsg:
		if msg.Kind != models.IntentPay {
			break
		}
		m.pending = false
		if msg.Err != nil {
			classified := wallet.Classify(msg.Err)
			m.showFeedback(FeedbackError, fmt.Sprintf("%s: %s", classified.Title(), classified.UserMessage()), 6*time.Second)
		} else {
			m.showFeedback(FeedbackSuccess,
				fmt.Sprintf("Paid %s %s: %s", m.lastAmount, m.asset, utils.FormatSignature(msg.Signature)),
				6*time.Second)
			m.amountInput.SetValue("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)

	if m.feedback != nil && m.feedback.Expired() {
		m.feedback = nil
	}

	return m, cmd
}

func (m PayModel) submit() (PayModel, tea.Cmd) {
	intent := models.PaymentIntent{
		Asset:         m.asset,
		AmountDecimal: m.amountInput.Value(),
	}

	validated, err := validation.ValidatePayment(intent, m.cfg.Merchant, m.sync.Snapshot())
	if err != nil {
		classified := wallet.Classify(err)
		m.showFeedback(FeedbackError, fmt.Sprintf("%s: %s", classified.Title(), classified.UserMessage()), 6*time.Second)
		return m, nil
	}

	m.pending = true
	m.lastAmount = validation.FromBaseUnits(validated.BaseUnits, m.asset.Decimals())
	m.showFeedback(FeedbackInfo, "Waiting for wallet approval...", 30*time.Second)

	payload, err := m.builder.BuildPayment(m.account, validated)
	if err != nil {
		m.pending = false
		classified := wallet.Classify(err)
		m.showFeedback(FeedbackError, classified.UserMessage(), 6*time.Second)
		return m, nil
	}

	asset := m.asset
	pipe := m.pipeline
	timeout := m.cfg.RequestTimeout

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sig, err := pipe.Submit(ctx, payload, signing.SendOptions{FeeAsset: asset})
		return SubmitResultMsg{Kind: models.IntentPay, Signature: sig, Err: err}
	}
}

func (m PayModel) View() string {
	containerStyle := lipgloss.NewStyle().
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Peach))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Peach)).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext1))

	subtleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render("Pay Merchant"))
	content.WriteString("\n\n")

	merchant := "not configured"
	if m.cfg.Merchant != nil {
		merchant = utils.FormatAddress(m.cfg.Merchant.String(), 10, 8)
	}
	content.WriteString(labelStyle.Render(fmt.Sprintf("Merchant: %s", merchant)))
	content.WriteString("\n")
	content.WriteString(labelStyle.Render(fmt.Sprintf("Paying with: %s", m.asset)))
	content.WriteString("\n\n")

	snapshot := m.sync.Snapshot()
	content.WriteString(labelStyle.Render(fmt.Sprintf("Available: %s", utils.FormatBalance(snapshot.BalanceFor(m.asset), m.asset))))
	content.WriteString("\n\n")

	content.WriteString(labelStyle.Render("Amount"))
	content.WriteString("\n")
	content.WriteString(m.amountInput.View())
	content.WriteString("\n\n")

	if m.pending {
		content.WriteString(fmt.Sprintf("%s Submitting...", m.spinner.View()))
		content.WriteString("\n\n")
	}

	content.WriteString(subtleStyle.Render("Enter: pay • Tab: switch asset • Esc: back"))

	if m.feedback != nil {
		content.WriteString("\n\n")
		content.WriteString(m.feedback.Render())
	}

	return containerStyle.Render(content.String())
}

func (m *PayModel) showFeedback(feedbackType FeedbackType, message string, duration time.Duration) {
	m.feedback = newFeedback(feedbackType, message, duration)
}
