package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"tokenscout/internal/domain"
	"tokenscout/internal/observability"
)

// DefaultBaseURL is the public GeckoTerminal v2 API.
const DefaultBaseURL = "https://api.geckoterminal.com/api/v2"

// Default configuration values.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultRatePerMin  = 25
)

// Sentinel errors for the external interfaces.
var (
	ErrNotFound    = errors.New("marketdata: pool not found")
	ErrUnavailable = errors.New("marketdata: source unavailable")
)

// Client is a rate-limited GeckoTerminal-style market data client with a
// circuit breaker. It serves both pool discovery and the price oracle.
type Client struct {
	baseURL     string
	client      *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	now         func() time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithRatePerMinute sets the request budget per minute.
func WithRatePerMinute(n int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithClock sets the time source used for pool-age computation.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a market data client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	settings := gobreaker.Settings{Name: "marketdata"}
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	settings.Timeout = 60 * time.Second
	settings.OnStateChange = func(_ string, _, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			observability.DefaultMetrics.BreakerOpen.Set(1)
		} else {
			observability.DefaultMetrics.BreakerOpen.Set(0)
		}
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Every(time.Minute/DefaultRatePerMin), 1),
		breaker:     gobreaker.NewCircuitBreaker(settings),
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCandidatePools returns trending and newly created pools for a network,
// deduplicated by pool address. Partial results are returned when one of the
// two listings fails.
func (c *Client) GetCandidatePools(ctx context.Context, network domain.Network) ([]*domain.PoolSnapshot, error) {
	gt := geckoNetwork(network)

	var snapshots []*domain.PoolSnapshot
	seen := make(map[string]struct{})
	var lastErr error

	for _, endpoint := range []string{"trending_pools", "new_pools"} {
		var doc poolsDocument
		err := c.get(ctx, "listings", fmt.Sprintf("/networks/%s/%s", gt, endpoint), &doc)
		if err != nil {
			log.Warn().Err(err).Str("network", network.String()).Str("endpoint", endpoint).
				Msg("pool listing failed")
			lastErr = err
			continue
		}
		for i := range doc.Data {
			s := c.snapshotFromPool(network, &doc.Data[i])
			if s == nil {
				continue
			}
			if !network.ValidAddress(s.TokenAddress) {
				log.Debug().Str("network", network.String()).Str("token", s.TokenAddress).
					Msg("malformed token address in listing")
				continue
			}
			if _, dup := seen[s.PoolAddress]; dup {
				continue
			}
			seen[s.PoolAddress] = struct{}{}
			snapshots = append(snapshots, s)
		}
	}

	if snapshots == nil && lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	return snapshots, nil
}

// GetPoolSnapshot fetches one pool by address. Returns ErrNotFound when the
// pool does not exist on the network.
func (c *Client) GetPoolSnapshot(ctx context.Context, network domain.Network, poolAddress string) (*domain.PoolSnapshot, error) {
	var doc poolDocument
	err := c.get(ctx, "pool", fmt.Sprintf("/networks/%s/pools/%s", geckoNetwork(network), poolAddress), &doc)
	if err != nil {
		return nil, err
	}

	s := c.snapshotFromPool(network, &doc.Data)
	if s == nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// GetCurrentPrice is the price-oracle view over the pool endpoint. A missing
// or zero price returns ErrUnavailable so callers skip the sample instead of
// reading it as a price movement.
func (c *Client) GetCurrentPrice(ctx context.Context, network domain.Network, poolAddress string) (float64, error) {
	s, err := c.GetPoolSnapshot(ctx, network, poolAddress)
	if err != nil {
		return 0, err
	}
	if s.PriceUSD <= 0 {
		return 0, ErrUnavailable
	}
	return s.PriceUSD, nil
}

// get performs a rate-limited GET with retries behind the circuit breaker.
func (c *Client) get(ctx context.Context, operation, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	started := time.Now()
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.doWithRetry(ctx, c.baseURL+path, out)
	})
	observability.RecordMarketDataRequest(operation, time.Since(started).Seconds(), err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, url string, out any) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Not-found is definitive, never retried.
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// snapshotFromPool maps one API pool record to a domain snapshot. Missing
// numeric fields become zero, never an error.
func (c *Client) snapshotFromPool(network domain.Network, p *poolData) *domain.PoolSnapshot {
	attrs := &p.Attributes
	if attrs.Address == "" && p.ID == "" {
		return nil
	}

	poolAddress := attrs.Address
	if poolAddress == "" {
		// id format: "<network>_<address>"
		poolAddress = strings.TrimPrefix(p.ID, string(network)+"_")
	}

	liquidity := parseFloat(attrs.ReserveInUSD)
	if liquidity == 0 {
		// Thin listings sometimes omit reserve; estimate from FDV.
		liquidity = parseFloat(attrs.FDVUSD) * 0.25
	}

	s := &domain.PoolSnapshot{
		Network:        network,
		TokenAddress:   baseTokenAddress(network, p),
		TokenName:      baseTokenName(attrs.Name),
		TokenSymbol:    baseTokenName(attrs.Name),
		PoolAddress:    poolAddress,
		PriceUSD:       parseFloat(attrs.BaseTokenPriceUSD),
		LiquidityUSD:   liquidity,
		Volume1h:       parseFloat(attrs.VolumeUSD["h1"]),
		Volume6h:       parseFloat(attrs.VolumeUSD["h6"]),
		Volume24h:      parseFloat(attrs.VolumeUSD["h24"]),
		PriceChange1h:  parseFloat(attrs.PriceChangePercentage["h1"]),
		PriceChange6h:  parseFloat(attrs.PriceChangePercentage["h6"]),
		PriceChange24h: parseFloat(attrs.PriceChangePercentage["h24"]),
		ObservedAt:     c.now().UnixMilli(),
	}

	if w, ok := attrs.Transactions["h1"]; ok {
		s.Buys1h, s.Sells1h = w.Buys, w.Sells
		s.Buyers1h, s.Sellers1h = w.Buyers, w.Sellers
	}
	if w, ok := attrs.Transactions["h24"]; ok {
		s.Buys24h, s.Sells24h = w.Buys, w.Sells
		s.Buyers24h, s.Sellers24h = w.Buyers, w.Sellers
	}

	if attrs.PoolCreatedAt != "" {
		if created, err := time.Parse(time.RFC3339, attrs.PoolCreatedAt); err == nil {
			s.AgeHours = c.now().Sub(created).Hours()
		}
	}

	return s
}

// geckoNetwork maps a domain network to its API path segment.
func geckoNetwork(n domain.Network) string {
	if n == domain.NetworkPolygon {
		return "polygon_pos"
	}
	return string(n)
}

// baseTokenAddress extracts the base token address from the pool's
// relationships, id format "<network>_<address>".
func baseTokenAddress(network domain.Network, p *poolData) string {
	id := p.Relationships.BaseToken.Data.ID
	if id == "" {
		return ""
	}
	return strings.TrimPrefix(id, string(geckoNetwork(network))+"_")
}

// baseTokenName extracts the base token from a pair name like "PEPE / WETH".
func baseTokenName(pairName string) string {
	if i := strings.Index(pairName, " /"); i > 0 {
		return pairName[:i]
	}
	return pairName
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Wire types for the JSON:API pool documents.

type poolDocument struct {
	Data poolData `json:"data"`
}

type poolsDocument struct {
	Data []poolData `json:"data"`
}

type poolData struct {
	ID            string         `json:"id"`
	Attributes    poolAttributes `json:"attributes"`
	Relationships struct {
		BaseToken struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"base_token"`
	} `json:"relationships"`
}

type poolAttributes struct {
	Name                  string                `json:"name"`
	Address               string                `json:"address"`
	BaseTokenPriceUSD     string                `json:"base_token_price_usd"`
	ReserveInUSD          string                `json:"reserve_in_usd"`
	FDVUSD                string                `json:"fdv_usd"`
	PoolCreatedAt         string                `json:"pool_created_at"`
	VolumeUSD             map[string]string     `json:"volume_usd"`
	PriceChangePercentage map[string]string     `json:"price_change_percentage"`
	Transactions          map[string]txnsWindow `json:"transactions"`
}

type txnsWindow struct {
	Buys    int `json:"buys"`
	Sells   int `json:"sells"`
	Buyers  int `json:"buyers"`
	Sellers int `json:"sellers"`
}
