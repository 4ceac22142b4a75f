package security

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tokenscout/internal/domain"
)

// DefaultBaseURL is the GoPlus token security API.
const DefaultBaseURL = "https://api.gopluslabs.io/api/v1"

// Risk levels in increasing severity.
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

const cacheTTL = time.Hour

// Result is the security-oracle verdict for a token.
type Result struct {
	Score      float64 // 0-100, higher is safer
	RiskLevel  string
	IsHoneypot bool
	IsLpLocked bool
	Checked    bool // false when the network has no security coverage
}

// chainIDs maps EVM networks to GoPlus chain identifiers. Networks absent
// here (solana) have no coverage and pass with a neutral result.
var chainIDs = map[domain.Network]string{
	domain.NetworkEth:      "1",
	domain.NetworkBsc:      "56",
	domain.NetworkPolygon:  "137",
	domain.NetworkArbitrum: "42161",
	domain.NetworkAvax:     "43114",
	domain.NetworkBase:     "8453",
}

// Client queries the token security oracle with a one-hour response cache.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	result  Result
	fetched time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithClock sets the time source used for cache expiry.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a security oracle client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckSecurity returns the security verdict for a token. Networks without
// oracle coverage pass with a neutral full-score result so they are gated by
// scoring and filtering alone.
func (c *Client) CheckSecurity(ctx context.Context, network domain.Network, tokenAddress string) (*Result, error) {
	chainID, ok := chainIDs[network]
	if !ok {
		return &Result{Score: 100, RiskLevel: RiskLow, IsLpLocked: true, Checked: false}, nil
	}

	key := string(network) + ":" + strings.ToLower(tokenAddress)
	c.mu.Lock()
	if entry, hit := c.cache[key]; hit && c.now().Sub(entry.fetched) < cacheTTL {
		c.mu.Unlock()
		r := entry.result
		return &r, nil
	}
	c.mu.Unlock()

	data, err := c.fetchTokenSecurity(ctx, chainID, tokenAddress)
	if err != nil {
		return nil, err
	}

	result := evaluate(data)

	c.mu.Lock()
	c.cache[key] = cacheEntry{result: result, fetched: c.now()}
	c.mu.Unlock()

	return &result, nil
}

func (c *Client) fetchTokenSecurity(ctx context.Context, chainID, tokenAddress string) (*tokenSecurity, error) {
	url := fmt.Sprintf("%s/token_security/%s?contract_addresses=%s",
		c.baseURL, chainID, strings.ToLower(tokenAddress))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var doc securityDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	data, ok := doc.Result[strings.ToLower(tokenAddress)]
	if !ok {
		return nil, fmt.Errorf("no security data for token")
	}
	return &data, nil
}

// evaluate derives the 0-100 score and risk level from the raw report.
func evaluate(d *tokenSecurity) Result {
	r := Result{Score: 100, RiskLevel: RiskLow, Checked: true}

	if d.IsHoneypot == "1" || d.CannotSellAll == "1" {
		r.IsHoneypot = true
		r.Score = 0
		r.RiskLevel = RiskCritical
		return r
	}

	r.IsLpLocked = lpLocked(d)
	if !r.IsLpLocked {
		r.Score -= 40
		r.RiskLevel = RiskCritical
	}

	if taxPct(d.BuyTax) > 10 || taxPct(d.SellTax) > 10 {
		r.Score -= 15
		raise(&r.RiskLevel, RiskMedium)
	}
	if d.OwnerAddress != "" && !renounced(d.OwnerAddress) {
		r.Score -= 10
		raise(&r.RiskLevel, RiskMedium)
	}
	if d.IsOpenSource == "0" {
		r.Score -= 10
		raise(&r.RiskLevel, RiskMedium)
	}
	if d.IsMintable == "1" {
		r.Score -= 10
		raise(&r.RiskLevel, RiskHigh)
	}

	if r.Score < 0 {
		r.Score = 0
	}
	return r
}

// lpLocked reports whether a majority of LP supply sits with locked holders
// or the burn address. Holder percents arrive as fractions ("0.55").
func lpLocked(d *tokenSecurity) bool {
	var locked float64
	for _, h := range d.LPHolders {
		if h.IsLocked == 1 || renounced(h.Address) {
			locked += parseFraction(h.Percent)
		}
	}
	return locked >= 0.5
}

func renounced(addr string) bool {
	a := strings.ToLower(addr)
	return a == "0x0000000000000000000000000000000000000000" ||
		a == "0x000000000000000000000000000000000000dead"
}

// taxPct converts a fractional tax ("0.05") to percent units.
func taxPct(s string) float64 {
	return parseFraction(s) * 100
}

func parseFraction(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// raise bumps the risk level, never lowering it.
func raise(level *string, to string) {
	rank := map[string]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2, RiskCritical: 3}
	if rank[to] > rank[*level] {
		*level = to
	}
}

// Veto reports whether a verdict hard-rejects a candidate given the
// configured score floor.
func Veto(r *Result, minScore float64) (bool, string) {
	if r.IsHoneypot {
		return true, "honeypot"
	}
	if r.Checked && r.Score < minScore {
		return true, fmt.Sprintf("security score %.0f below floor %.0f", r.Score, minScore)
	}
	return false, ""
}

// LogVerdict emits the structured verdict line used by the scan loop.
func LogVerdict(network domain.Network, tokenAddress string, r *Result) {
	log.Debug().
		Str("network", network.String()).
		Str("token", tokenAddress).
		Float64("score", r.Score).
		Str("risk", r.RiskLevel).
		Bool("honeypot", r.IsHoneypot).
		Bool("lp_locked", r.IsLpLocked).
		Msg("security verdict")
}

// Wire types for the GoPlus token_security response.

type securityDocument struct {
	Result map[string]tokenSecurity `json:"result"`
}

type tokenSecurity struct {
	IsHoneypot    string     `json:"is_honeypot"`
	CannotSellAll string     `json:"cannot_sell_all"`
	BuyTax        string     `json:"buy_tax"`
	SellTax       string     `json:"sell_tax"`
	IsOpenSource  string     `json:"is_open_source"`
	IsMintable    string     `json:"is_mintable"`
	OwnerAddress  string     `json:"owner_address"`
	LPHolders     []lpHolder `json:"lp_holders"`
}

type lpHolder struct {
	Address  string `json:"address"`
	Percent  string `json:"percent"`
	IsLocked int    `json:"is_locked"`
}
