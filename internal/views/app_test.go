package views

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"passterm/solWallet/internal/config"
	"passterm/solWallet/internal/models"
	appsync "passterm/solWallet/internal/sync"
)

func testConfig() *config.Config {
	mint := solana.MustPublicKeyFromBase58(config.DefaultTokenMint)
	return &config.Config{
		RPCEndpoint:     config.DefaultRPCEndpoint,
		AggregatorURL:   config.DefaultAggregatorURL,
		TokenMint:       mint,
		RefreshCooldown: config.DefaultRefreshCooldown,
		RefreshInterval: config.DefaultRefreshInterval,
		SettleDelay:     config.DefaultSettleDelay,
		RequestTimeout:  config.DefaultRequestTimeout,
	}
}

func testApp() *AppModel {
	return NewAppModel(testConfig(), nil, nil, nil, nil, zap.NewNop())
}

func TestAppStartsDisconnected(t *testing.T) {
	app := testApp()

	if app.state != ViewConnect {
		t.Errorf("Expected initial state ViewConnect, got %d", app.state)
	}
	if app.session.Active() {
		t.Error("Expected no active session at startup")
	}
}

func TestNavigationGatedWithoutSession(t *testing.T) {
	app := testApp()

	model, _ := app.navigateTo(ViewDashboard)
	updated := model.(AppModel)

	if updated.state != ViewConnect {
		t.Errorf("Expected redirect to ViewConnect without a session, got %d", updated.state)
	}
}

func TestSessionResultOpensDashboard(t *testing.T) {
	app := testApp()
	account := solana.NewWallet().PublicKey()

	model, cmd := app.Update(SessionResultMsg{
		Session: models.Session{Status: models.SessionConnected, Account: account},
	})
	updated := model.(AppModel)

	if updated.state != ViewDashboard {
		t.Errorf("Expected ViewDashboard after connect, got %d", updated.state)
	}
	if updated.dashboard == nil {
		t.Fatal("Expected dashboard model to be built")
	}
	if cmd == nil {
		t.Error("Expected initial refresh to be scheduled")
	}
}

func TestSessionClosedResetsState(t *testing.T) {
	app := testApp()
	account := solana.NewWallet().PublicKey()

	model, _ := app.Update(SessionResultMsg{
		Session: models.Session{Status: models.SessionConnected, Account: account},
	})
	connected := model.(AppModel)

	// Seed a snapshot so the reset is observable.
	ticket, _ := connected.sync.Begin(appsync.TriggerInitial, time.Now())
	connected.sync.Apply(ticket, appsync.Result{Native: models.Uint64Ptr(100)}, time.Now())

	model, _ = connected.Update(SessionClosedMsg{})
	closed := model.(AppModel)

	if closed.state != ViewConnect {
		t.Errorf("Expected ViewConnect after disconnect, got %d", closed.state)
	}
	if closed.session.Active() {
		t.Error("Expected session inactive after disconnect")
	}
	if closed.sync.Snapshot().NativeKnown() {
		t.Error("Expected snapshot cleared after disconnect")
	}
	if closed.dashboard != nil {
		t.Error("Expected dashboard discarded after disconnect")
	}
}

func TestUserRefreshThrottledShowsNotice(t *testing.T) {
	app := testApp()
	account := solana.NewWallet().PublicKey()

	model, _ := app.Update(SessionResultMsg{
		Session: models.Session{Status: models.SessionConnected, Account: account},
	})
	connected := model.(AppModel)

	// The initial refresh stamps the gate.
	if _, err := connected.sync.Begin(appsync.TriggerInitial, time.Now()); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	model, cmd := connected.Update(RefreshRequestMsg{Trigger: appsync.TriggerUser})
	updated := model.(AppModel)

	if cmd != nil {
		t.Error("Expected no fetch command for a throttled refresh")
	}
	if updated.dashboard.feedback == nil {
		t.Fatal("Expected throttle notice on the dashboard")
	}
	if updated.dashboard.feedback.Type != FeedbackWarning {
		t.Errorf("Expected warning feedback, got %s", updated.dashboard.feedback.Type)
	}
}

func TestDashboardMenuNavigation(t *testing.T) {
	cfg := testConfig()
	sync := appsync.New(cfg.RefreshCooldown, zap.NewNop())
	dash := NewDashboardModel(cfg, sync, nil, solana.NewWallet().PublicKey())

	updated, _ := dash.Update(tea.KeyMsg{Type: tea.KeyDown})
	if updated.selectedMenuItem != 1 {
		t.Errorf("Expected selection 1 after down, got %d", updated.selectedMenuItem)
	}

	updated, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected navigation command for Swap")
	}
	msg := cmd()
	nav, ok := msg.(NavigateMsg)
	if !ok {
		t.Fatalf("Expected NavigateMsg, got %T", msg)
	}
	if nav.State != ViewSwap {
		t.Errorf("Expected ViewSwap, got %d", nav.State)
	}
}

func TestDashboardPaymentsDisabledWithoutMerchant(t *testing.T) {
	cfg := testConfig()
	sync := appsync.New(cfg.RefreshCooldown, zap.NewNop())
	dash := NewDashboardModel(cfg, sync, nil, solana.NewWallet().PublicKey())
	dash.selectedMenuItem = 2

	updated, cmd := dash.selectMenuItem()
	if cmd != nil {
		t.Error("Expected no navigation when merchant is not configured")
	}
	if updated.feedback == nil || updated.feedback.Type != FeedbackError {
		t.Error("Expected error feedback when merchant is not configured")
	}
}

// findMsg executes a command chain, flattening batches, and returns the
// first message the predicate accepts.
func findMsg(cmd tea.Cmd, match func(tea.Msg) bool) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if found := findMsg(sub, match); found != nil {
				return found
			}
		}
		return nil
	}
	if match(msg) {
		return msg
	}
	return nil
}

func connectApp(t *testing.T, app *AppModel) AppModel {
	t.Helper()
	model, _ := app.Update(SessionResultMsg{
		Session: models.Session{Status: models.SessionConnected, Account: solana.NewWallet().PublicKey()},
	})
	return model.(AppModel)
}

func TestSubmitResultReleasesFormWhileAway(t *testing.T) {
	connected := connectApp(t, testApp())

	// The user submits from the send form, then backs out to the dashboard
	// before the result lands.
	connected.state = ViewDashboard
	connected.send.pending = true

	model, _ := connected.Update(SubmitResultMsg{
		Kind: models.IntentSend,
		Err:  errors.New("User rejected the request"),
	})
	updated := model.(AppModel)

	if updated.send.pending {
		t.Fatal("Expected the send form's pending lock to clear while another view is active")
	}
	if updated.send.feedback == nil || updated.send.feedback.Type != FeedbackError {
		t.Error("Expected the send form to record the failure feedback")
	}
}

func TestAirdropResultReleasesDashboardWhileAway(t *testing.T) {
	connected := connectApp(t, testApp())

	connected.state = ViewSend
	connected.dashboard.airdropPending = true

	model, _ := connected.Update(AirdropResultMsg{Signature: "sig"})
	updated := model.(AppModel)

	if updated.dashboard.airdropPending {
		t.Fatal("Expected the airdrop pending flag to clear while a form view is active")
	}
	if updated.dashboard.feedback == nil || updated.dashboard.feedback.Type != FeedbackSuccess {
		t.Error("Expected the dashboard to record the airdrop success feedback")
	}
}

func TestSubmitSuccessSchedulesSettleResync(t *testing.T) {
	cfg := testConfig()
	cfg.SettleDelay = time.Millisecond
	app := NewAppModel(cfg, nil, nil, nil, nil, zap.NewNop())
	connected := connectApp(t, app)

	// Stamp the gate so only a bypassing refresh could start afterwards.
	if _, err := connected.sync.Begin(appsync.TriggerInitial, time.Now()); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	model, cmd := connected.Update(SubmitResultMsg{Kind: models.IntentSend, Signature: "sig"})
	connected = model.(AppModel)
	if cmd == nil {
		t.Fatal("Expected a command after a successful submission")
	}

	settle := findMsg(cmd, func(msg tea.Msg) bool {
		_, ok := msg.(SettleResyncMsg)
		return ok
	})
	if settle == nil {
		t.Fatal("Expected the settle delay to produce a resync message")
	}

	model, cmd = connected.Update(settle)
	connected = model.(AppModel)
	if cmd == nil {
		t.Fatal("Expected the settle resync to begin a refresh despite the cooldown")
	}
	if !connected.dashboard.refreshing {
		t.Error("Expected the dashboard to show the resync in progress")
	}
}

func TestTimerTickSkippedWhenBreakerOpen(t *testing.T) {
	app := testApp()
	account := solana.NewWallet().PublicKey()

	model, _ := app.Update(SessionResultMsg{
		Session: models.Session{Status: models.SessionConnected, Account: account},
	})
	connected := model.(AppModel)

	// Trip the breaker with a rate-limited refresh.
	ticket, _ := connected.sync.Begin(appsync.TriggerInitial, time.Now())
	connected.sync.Apply(ticket, appsync.Result{Err: rateLimitErr{}}, time.Now())

	if connected.sync.TimerEnabled() {
		t.Fatal("Expected timer breaker to be open")
	}
}

type rateLimitErr struct{}

func (rateLimitErr) Error() string { return "429 Too Many Requests" }
