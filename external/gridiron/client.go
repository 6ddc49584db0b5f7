// Package gridiron is the client for the Gridiron NFL data feed. It
// backs schedule sync with team and season game listings.
package gridiron

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/nflsurvivor/survivor-pool/internal/platform/logging"
	"github.com/nflsurvivor/survivor-pool/internal/platform/resilience"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const defaultBaseURL = "https://api.gridiron-data.io/v1"

var errGridironTransient = crerr.New("gridiron transient failure")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	apiKey         string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		timeout:        timeout,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchTeams(ctx context.Context) ([]usecase.ExternalTeam, error) {
	var envelope teamsEnvelope
	if err := c.doJSON(ctx, "/teams", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}

	out := make([]usecase.ExternalTeam, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		mapped := mapTeam(item)
		if mapped.Abbreviation == "" {
			c.logger.WarnContext(ctx, "skipping provider team without abbreviation", "external_id", item.ID)
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) FetchSeasonGames(ctx context.Context, year int) ([]usecase.ExternalGame, error) {
	if year <= 0 {
		return nil, fmt.Errorf("season year must be greater than zero")
	}

	path := "/seasons/" + strconv.Itoa(year) + "/games"
	var envelope gamesEnvelope
	if err := c.doJSON(ctx, path, map[string]string{"per_page": "500"}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch season games year=%d: %w", year, err)
	}

	out := make([]usecase.ExternalGame, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		mapped, ok := mapGame(item)
		if !ok {
			c.logger.WarnContext(ctx, "skipping provider game with bad kickoff timestamp",
				"external_id", item.ID,
				"kickoff_at", item.KickoffAt,
			)
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "gridiron circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: nfl data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.buildURL(path, query)
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if crerr.Is(reqErr, errGridironTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if crerr.Is(err, errGridironTransient) {
			return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, redactAPIKey(err.Error(), c.apiKey))
		}
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path string, query map[string]string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString(path)
	sep := byte('?')
	for key, value := range query {
		_ = buf.WriteByte(sep)
		_, _ = buf.WriteString(key)
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(value)
		sep = '&'
	}
	if c.apiKey != "" {
		_ = buf.WriteByte(sep)
		_, _ = buf.WriteString("api_key=")
		_, _ = buf.WriteString(c.apiKey)
	}
	return buf.String()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		raw, err := c.doFastHTTP(fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, errGridironTransient) {
			return nil, err
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "gridiron request failed",
		"url", redactAPIKey(fullURL, c.apiKey),
		"error", redactAPIKey(lastErr.Error(), c.apiKey),
	)
	return nil, lastErr
}

func (c *Client) doFastHTTP(fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, crerr.Wrapf(errGridironTransient, "send request: %s", redactAPIKey(err.Error(), c.apiKey))
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	if status >= 200 && status < 300 {
		return body, nil
	}
	if isRetryableStatus(status) {
		return nil, crerr.Wrapf(errGridironTransient, "provider status=%d body=%s", status, abbreviateBody(body))
	}
	return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(body))
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 512 {
		return text[:512] + "...(truncated)"
	}
	return text
}

func redactAPIKey(value, apiKey string) string {
	if apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
}
