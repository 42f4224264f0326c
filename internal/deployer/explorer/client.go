package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	moduleContract = "contract"

	statusOK = "1"

	maxResponseSize = 4 << 20
)

var (
	ErrAPI            = errors.New("explorer API error")
	ErrInvalidAPIKey  = errors.New("explorer rejected the API key")
	ErrIndexerTimeout = errors.New("explorer did not index the contract in time")
	// ErrRejected is returned when the explorer refuses or fails a verification.
	ErrRejected      = errors.New("explorer rejected verification")
	ErrVerifyTimeout = errors.New("explorer did not finish verification in time")
)

type (
	// Client talks to an Etherscan-compatible explorer API.
	Client struct {
		cfg     configs.Explorer
		chainID int64
		http    *retryablehttp.Client
		limiter *rate.Limiter
		logger  *slog.Logger
	}

	// response is the {status, message, result} envelope every endpoint returns.
	// result is a string for most actions and an array for queries.
	response struct {
		Status  string
		Message string
		Result  gjson.Result
	}
)

func New(cfg configs.Explorer, chainID int64) *Client {
	log := logger.Named("explorer_client")

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.RetryWaitMin = 500 * time.Millisecond
	httpClient.RetryWaitMax = 5 * time.Second
	httpClient.HTTPClient.Timeout = 30 * time.Second
	httpClient.Logger = log

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		cfg:     cfg,
		chainID: chainID,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
	}
}

// AddressURL returns the explorer page showing the contract's source, or an
// empty string when no browser URL is configured.
func (c *Client) AddressURL(address common.Address) string {
	if c.cfg.BrowserURL == "" {
		return ""
	}
	return strings.TrimSuffix(c.cfg.BrowserURL, "/") + "/address/" + address.Hex() + "#code"
}

// IsVerified reports whether the explorer already has source code for address.
func (c *Client) IsVerified(ctx context.Context, address common.Address) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, url.Values{
		"module":  {moduleContract},
		"action":  {"getsourcecode"},
		"address": {address.Hex()},
	})
	if err != nil {
		return false, err
	}
	if !resp.ok() {
		if isInvalidKey(resp.text()) {
			return false, fmt.Errorf("%w: %s", ErrInvalidAPIKey, resp.text())
		}
		return false, fmt.Errorf("%w: getsourcecode: %s", ErrAPI, resp.text())
	}

	return resp.Result.Get("0.SourceCode").String() != "", nil
}

func (c *Client) do(ctx context.Context, method string, params url.Values) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("apikey", c.cfg.APIKey)
	if c.chainID != 0 {
		params.Set("chainid", strconv.FormatInt(c.chainID, 10))
	}

	endpoint, err := url.Parse(c.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid explorer API URL '%s': %w", c.cfg.APIURL, err)
	}

	var req *retryablehttp.Request
	if method == http.MethodPost {
		req, err = retryablehttp.NewRequestWithContext(ctx, method, endpoint.String(), strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		endpoint.RawQuery = params.Encode()
		req, err = retryablehttp.NewRequestWithContext(ctx, method, endpoint.String(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", params.Get("action"), err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", params.Get("action"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", params.Get("action"), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned HTTP %d", ErrAPI, params.Get("action"), resp.StatusCode)
	}

	return parseResponse(body)
}

func parseResponse(body []byte) (*response, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed response '%s'", ErrAPI, truncate(string(body), 200))
	}

	parsed := gjson.ParseBytes(body)
	return &response{
		Status:  parsed.Get("status").String(),
		Message: parsed.Get("message").String(),
		Result:  parsed.Get("result"),
	}, nil
}

func (r *response) ok() bool {
	return r.Status == statusOK
}

// text is the most descriptive message in the envelope.
func (r *response) text() string {
	if r.Result.Type == gjson.String && r.Result.String() != "" {
		return r.Result.String()
	}
	return r.Message
}

func newBackOff(ctx context.Context, cfg configs.Backoff) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = cfg.MaxElapsed

	return backoff.WithContext(b, ctx)
}

func contains(text, fragment string) bool {
	return strings.Contains(strings.ToLower(text), fragment)
}

func isInvalidKey(text string) bool {
	return contains(text, "invalid api key")
}

func isRateLimited(text string) bool {
	return contains(text, "rate limit")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
