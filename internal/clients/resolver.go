package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/config"
)

// DoHResolver queries a public DNS-over-HTTPS resolver with a JSON response
// format (RFC 8484 JSON API, as served by dns.google and cloudflare-dns.com).
type DoHResolver struct {
	cfg    *config.DNSConfig
	client *http.Client
	log    zerolog.Logger
}

// NewDoHResolver creates a TXTResolver against the configured endpoint
func NewDoHResolver(cfg *config.DNSConfig, log zerolog.Logger) *DoHResolver {
	return &DoHResolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.LookupTimeout},
		log:    log.With().Str("client", "doh").Logger(),
	}
}

const dnsTypeTXT = 16

type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Name string `json:"name"`
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

func (r *DoHResolver) LookupTXT(ctx context.Context, hostname string) ([]string, error) {
	endpoint := fmt.Sprintf("%s?name=%s&type=TXT", r.cfg.ResolverURL, url.QueryEscape(hostname))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build DNS query: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DNS lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DNS resolver returned status %d", resp.StatusCode)
	}

	var parsed dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode DNS response: %w", err)
	}

	// Status 3 is NXDOMAIN: the record simply is not there yet, which for a
	// propagation poll means "no values seen", not a failure.
	if parsed.Status != 0 && parsed.Status != 3 {
		return nil, fmt.Errorf("DNS resolver returned rcode %d", parsed.Status)
	}

	var values []string
	for _, a := range parsed.Answer {
		if a.Type != dnsTypeTXT {
			continue
		}
		// TXT data arrives quoted, possibly in multiple quoted chunks.
		values = append(values, strings.ReplaceAll(strings.Trim(a.Data, `"`), `" "`, ""))
	}
	return values, nil
}
