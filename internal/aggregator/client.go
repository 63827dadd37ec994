package aggregator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"passterm/solWallet/internal/wallet"
)

const (
	// Fixed maximum slippage tolerance for all swaps, in basis points.
	SlippageBps = 50

	defaultTimeout = 30 * time.Second
)

// Client talks to the external price aggregator: a priced route lookup and
// a swap-transaction build endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("aggregator"),
	}
}

// Quote requests a priced route for the pair and amount. Only direct routes
// are requested. An empty route list is a hard NoRouteAvailable error.
func (c *Client) Quote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64) (*Route, error) {
	query := url.Values{}
	query.Set("inputMint", inputMint.String())
	query.Set("outputMint", outputMint.String())
	query.Set("amount", strconv.FormatUint(amount, 10))
	query.Set("slippageBps", strconv.Itoa(SlippageBps))
	query.Set("onlyDirectRoutes", "true")

	endpoint := c.baseURL + "/quote?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}

	var quoteResp QuoteResponse
	if err := c.do(req, &quoteResp); err != nil {
		return nil, wallet.NewNetworkError("quote request failed", err)
	}

	if len(quoteResp.Routes) == 0 {
		return nil, wallet.NewNoRouteError(inputMint.String(), outputMint.String())
	}

	route := quoteResp.Routes[0]
	c.logger.Info("quote received",
		zap.String("inputMint", inputMint.String()),
		zap.String("outputMint", outputMint.String()),
		zap.Uint64("inAmount", amount),
		zap.String("outAmount", route.OutAmount))

	return &route, nil
}

// BuildSwap asks the aggregator for a ready-to-sign transaction for the
// route, addressed to the session account. The payload is opaque: it is
// decoded from base64 and forwarded whole, never decomposed.
func (c *Client) BuildSwap(ctx context.Context, route *Route, account solana.PublicKey) ([]byte, error) {
	body, err := json.Marshal(SwapRequest{
		Route:         route,
		UserPublicKey: account.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var swapResp SwapResponse
	if err := c.do(req, &swapResp); err != nil {
		return nil, wallet.NewSwapBuildError(err)
	}

	if swapResp.SwapTransaction == "" {
		return nil, wallet.NewSwapBuildError(nil)
	}

	payload, err := base64.StdEncoding.DecodeString(swapResp.SwapTransaction)
	if err != nil {
		return nil, wallet.NewSwapBuildError(fmt.Errorf("malformed transaction payload: %w", err))
	}

	return payload, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("aggregator returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
