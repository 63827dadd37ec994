package views

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"passterm/solWallet/internal/utils"
)

type FeedbackMessage struct {
	Type     FeedbackType
	Message  string
	Duration time.Duration
	ShowTime time.Time
}

type FeedbackType string

const (
	FeedbackSuccess FeedbackType = "success"
	FeedbackError   FeedbackType = "error"
	FeedbackWarning FeedbackType = "warning"
	FeedbackInfo    FeedbackType = "info"
)

func newFeedback(feedbackType FeedbackType, message string, duration time.Duration) *FeedbackMessage {
	return &FeedbackMessage{
		Type:     feedbackType,
		Message:  message,
		Duration: duration,
		ShowTime: time.Now(),
	}
}

func (f *FeedbackMessage) Expired() bool {
	return time.Since(f.ShowTime) > f.Duration
}

func (f *FeedbackMessage) Render() string {
	var color string
	switch f.Type {
	case FeedbackSuccess:
		color = utils.Colours.Green
	case FeedbackError:
		color = utils.Colours.Red
	case FeedbackWarning:
		color = utils.Colours.Yellow
	case FeedbackInfo:
		color = utils.Colours.Blue
	default:
		color = utils.Colours.Text
	}

	feedbackStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Background(lipgloss.Color(utils.Colours.Surface0)).
		Padding(0, 1).
		Bold(true)

	return feedbackStyle.Render(f.Message)
}
