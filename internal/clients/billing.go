package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/config"
)

// HTTPBilling talks to the billing service. Plan checks and checkout
// sessions are the only two calls the pipeline needs.
type HTTPBilling struct {
	cfg    *config.BillingConfig
	client *http.Client
	log    zerolog.Logger
}

// NewHTTPBilling creates a Billing client for the configured base URL
func NewHTTPBilling(cfg *config.BillingConfig, log zerolog.Logger) *HTTPBilling {
	return &HTTPBilling{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("client", "billing").Logger(),
	}
}

type entitlementResponse struct {
	Entitled bool `json:"entitled"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (b *HTTPBilling) IsEntitled(ctx context.Context, userID, capability string) (bool, error) {
	endpoint := fmt.Sprintf("%s/entitlements/check?user_id=%s&capability=%s",
		b.cfg.BaseURL, url.QueryEscape(userID), url.QueryEscape(capability))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build entitlement request: %w", err)
	}
	b.authorize(req)

	resp, err := b.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("entitlement check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("billing service returned status %d", resp.StatusCode)
	}

	var parsed entitlementResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode entitlement response: %w", err)
	}
	return parsed.Entitled, nil
}

func (b *HTTPBilling) CreateUpgradeSession(ctx context.Context, userID, projectID string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"user_id":    userID,
		"project_id": projectID,
	})
	if err != nil {
		return "", fmt.Errorf("encode checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.cfg.BaseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	b.authorize(req)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout session failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("billing service returned status %d", resp.StatusCode)
	}

	var parsed checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	return parsed.URL, nil
}

func (b *HTTPBilling) authorize(req *http.Request) {
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}
}
