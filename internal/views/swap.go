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

// SwapModel is the aggregator swap form. The pair is fixed to SOL/USDC; the
// direction flips with a keystroke.
type SwapModel struct {
	cfg      *config.Config
	sync     *appsync.Synchronizer
	builder  *builder.Builder
	pipeline *pipeline.Pipeline
	account  solana.PublicKey

	fromAsset   models.Asset
	toAsset     models.Asset
	amountInput textinput.Model

	pending    bool
	lastAmount string
	spinner    *utils.Spinner
	feedback   *FeedbackMessage
}

func NewSwapModel(cfg *config.Config, sync *appsync.Synchronizer, b *builder.Builder, p *pipeline.Pipeline, account solana.PublicKey) *SwapModel {
	amount := textinput.New()
	amount.Placeholder = "Amount"
	amount.CharLimit = 20
	amount.Width = 24
	amount.Focus()

	return &SwapModel{
		cfg:         cfg,
		sync:        sync,
		builder:     b,
		pipeline:    p,
		account:     account,
		fromAsset:   models.AssetSOL,
		toAsset:     models.AssetUSDC,
		amountInput: amount,
		spinner:     utils.NewSpinner(),
	}
}

func (m SwapModel) Update(msg tea.Msg) (SwapModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}

		switch msg.String() {
		case "tab":
			m.fromAsset, m.toAsset = m.toAsset, m.fromAsset
			return m, nil
		case "enter":
			return m.submit()
		}

	case SubmitResultMsg:
		if msg.Kind != models.IntentSwap {
			break
		}
		m.pending = false
		if msg.Err != nil {
			classified := wallet.Classify(msg.Err)
			m.showFeedback(FeedbackError, fmt.Sprintf("%s: %s", classified.Title(), classified.UserMessage()), 6*time.Second)
		} else {
			m.showFeedback(FeedbackSuccess,
				fmt.Sprintf("Swapped %s %s: %s", m.lastAmount, m.fromAsset, utils.FormatSignature(msg.Signature)),
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

func (m SwapModel) submit() (SwapModel, tea.Cmd) {
	intent := models.SwapIntent{
		FromAsset:     m.fromAsset,
		ToAsset:       m.toAsset,
		AmountDecimal: m.amountInput.Value(),
	}

	validated, err := validation.ValidateSwap(intent, m.sync.Snapshot())
	if err != nil {
		classified := wallet.Classify(err)
		m.showFeedback(FeedbackError, fmt.Sprintf("%s: %s", classified.Title(), classified.UserMessage()), 6*time.Second)
		return m, nil
	}

	m.pending = true
	m.lastAmount = validation.FromBaseUnits(validated.BaseUnits, m.fromAsset.Decimals())
	m.showFeedback(FeedbackInfo, "Fetching route and waiting for approval...", 30*time.Second)

	b := m.builder
	pipe := m.pipeline
	account := m.account
	timeout := m.cfg.RequestTimeout

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		payload, err := b.BuildSwap(ctx, account, validated)
		if err != nil {
			return SubmitResultMsg{Kind: models.IntentSwap, Err: err}
		}

		sig, err := pipe.Submit(ctx, payload, signing.SendOptions{FeeAsset: models.AssetSOL})
		return SubmitResultMsg{Kind: models.IntentSwap, Signature: sig, Err: err}
	}
}

func (m SwapModel) View() string {
	containerStyle := lipgloss.NewStyle().
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(utils.Colours.Sapphire))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Sapphire)).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext1))

	pairStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Background(lipgloss.Color(utils.Colours.Surface0)).
		Padding(0, 1).
		Bold(true)

	subtleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render("Swap"))
	content.WriteString("\n\n")

	content.WriteString(pairStyle.Render(fmt.Sprintf("%s → %s", m.fromAsset, m.toAsset)))
	content.WriteString("\n\n")

	snapshot := m.sync.Snapshot()
	content.WriteString(labelStyle.Render(fmt.Sprintf("Available: %s", utils.FormatBalance(snapshot.BalanceFor(m.fromAsset), m.fromAsset))))
	content.WriteString("\n\n")

	content.WriteString(labelStyle.Render(fmt.Sprintf("Amount (%s)", m.fromAsset)))
	content.WriteString("\n")
	content.WriteString(m.amountInput.View())
	content.WriteString("\n\n")

	if m.pending {
		content.WriteString(fmt.Sprintf("%s Submitting...", m.spinner.View()))
		content.WriteString("\n\n")
	}

	content.WriteString(subtleStyle.Render("Enter: swap • Tab: flip direction • Esc: back"))

	if m.feedback != nil {
		content.WriteString("\n\n")
		content.WriteString(m.feedback.Render())
	}

	return containerStyle.Render(content.String())
}

func (m *SwapModel) showFeedback(feedbackType FeedbackType, message string, duration time.Duration) {
	m.feedback = newFeedback(feedbackType, message, duration)
}
