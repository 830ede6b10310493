package bureau

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"analytica-hq/meridian/pkg/underwriting"
)

// SourceLive and SourceSimulated label where a snapshot came from.
const (
	SourceLive      = "live"
	SourceSimulated = "simulated"
)

// Config configures the bureau client.
type Config struct {
	// BaseURL is the live bureau endpoint. Empty means simulation only.
	BaseURL string

	// APIKey authenticates against the live bureau.
	APIKey string

	// Timeout bounds each HTTP request.
	// Default: 10 seconds
	Timeout time.Duration

	// FallbackToSimulation substitutes a simulated report when the live
	// bureau fails. When false, live failures surface as errors.
	// Default: true
	FallbackToSimulation bool
}

// DefaultConfig returns the default bureau client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:              10 * time.Second,
		FallbackToSimulation: true,
	}
}

// Client fetches credit reports. Safe for concurrent use.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a bureau client.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With("component", "bureau"),
	}
}

// reportPayload is the live bureau's wire format.
type reportPayload struct {
	CreditScore int `json:"credit_score"`
	Accounts    struct {
		Total      int `json:"total"`
		Active     int `json:"active"`
		Delinquent int `json:"delinquent"`
	} `json:"accounts"`
	Obligations struct {
		TotalDebt float64 `json:"total_debt"`
	} `json:"outstanding_obligations"`
	Inquiries struct {
		Last6Months int `json:"last_6_months"`
	} `json:"inquiries"`
}

// Fetch returns the credit snapshot for an identity reference. When the
// live bureau fails and fallback is enabled, the simulated snapshot is
// returned with Degraded set; the caller decides what a degraded
// snapshot is worth.
func (c *Client) Fetch(ctx context.Context, identityRef string) (*underwriting.BureauSnapshot, error) {
	if identityRef == "" {
		return nil, fmt.Errorf("identity reference is required")
	}

	if c.config.BaseURL == "" {
		return c.simulate(identityRef, false), nil
	}

	snapshot, err := c.fetchLive(ctx, identityRef)
	if err == nil {
		return snapshot, nil
	}
	if !c.config.FallbackToSimulation {
		return nil, err
	}

	c.logger.Warn("live bureau unavailable, falling back to simulation",
		"error", err,
	)
	return c.simulate(identityRef, true), nil
}

func (c *Client) fetchLive(ctx context.Context, identityRef string) (*underwriting.BureauSnapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/reports/%s", c.config.BaseURL, url.PathEscape(identityRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bureau request: %w", err)
	}
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bureau request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bureau returned status %d", resp.StatusCode)
	}

	var payload reportPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode bureau response: %w", err)
	}

	return &underwriting.BureauSnapshot{
		Score:              payload.CreditScore,
		TotalAccounts:      payload.Accounts.Total,
		ActiveAccounts:     payload.Accounts.Active,
		DelinquentAccounts: payload.Accounts.Delinquent,
		TotalDebt:          payload.Obligations.TotalDebt,
		InquiriesLast6M:    payload.Inquiries.Last6Months,
		Source:             SourceLive,
		FetchedAt:          time.Now().UTC(),
	}, nil
}

// simulate derives a consistent report from the identity reference. The
// same applicant always gets the same simulated score.
func (c *Client) simulate(identityRef string, degraded bool) *underwriting.BureauSnapshot {
	var sum int
	for _, r := range identityRef {
		sum += int(r)
	}
	hash := sum % 300

	score := 500 + hash
	if score > 850 {
		score = 850
	}

	delinquent := 0
	if score <= 650 {
		delinquent = hash % 2
	}

	return &underwriting.BureauSnapshot{
		Score:              score,
		TotalAccounts:      2 + hash%5,
		ActiveAccounts:     1 + hash%3,
		DelinquentAccounts: delinquent,
		TotalDebt:          float64((hash * 1_000_000) % 100_000_000),
		InquiriesLast6M:    hash % 4,
		Degraded:           degraded,
		Source:             SourceSimulated,
		FetchedAt:          time.Now().UTC(),
	}
}
