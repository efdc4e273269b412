package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/config"
)

// HTTPCertProvisioner asks the edge service to provision a certificate for a
// verified domain. When no service is configured, provisioning reports
// not-yet-active and the domain stays at verified until a later check.
type HTTPCertProvisioner struct {
	cfg    *config.DNSConfig
	client *http.Client
	log    zerolog.Logger
}

// NewHTTPCertProvisioner creates a CertProvisioner for the configured service
func NewHTTPCertProvisioner(cfg *config.DNSConfig, log zerolog.Logger) *HTTPCertProvisioner {
	return &HTTPCertProvisioner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.LookupTimeout},
		log:    log.With().Str("client", "certs").Logger(),
	}
}

type provisionResponse struct {
	Active bool `json:"active"`
}

func (p *HTTPCertProvisioner) Provision(ctx context.Context, domain string) (bool, error) {
	if p.cfg.CertServiceURL == "" {
		return false, nil
	}

	body, err := json.Marshal(map[string]string{"domain": domain})
	if err != nil {
		return false, fmt.Errorf("encode provision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.CertServiceURL+"/certificates", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build provision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("certificate provisioning failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return false, fmt.Errorf("certificate service returned status %d", resp.StatusCode)
	}

	var parsed provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode provision response: %w", err)
	}
	return parsed.Active, nil
}
