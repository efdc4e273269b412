package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/clients"
	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
)

var domainRegex = regexp.MustCompile(`^(?i)[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

// DomainSvc drives the domain verification state machine. Each Check is one
// poll: it advances state only when the DNS challenge is satisfied and never
// blocks waiting for propagation; the caller owns the retry cadence.
type DomainSvc struct {
	repos    *repository.Repositories
	resolver clients.TXTResolver
	certs    clients.CertProvisioner
	cfg      *config.DNSConfig
	log      zerolog.Logger

	// Now is swappable for tests
	Now func() time.Time
}

// NewDomainSvc creates the domain verification service
func NewDomainSvc(repos *repository.Repositories, resolver clients.TXTResolver, certs clients.CertProvisioner, cfg *config.DNSConfig, log zerolog.Logger) *DomainSvc {
	return &DomainSvc{
		repos:    repos,
		resolver: resolver,
		certs:    certs,
		cfg:      cfg,
		log:      log.With().Str("service", "domain").Logger(),
		Now:      time.Now,
	}
}

// Attach registers a candidate domain and issues its verification challenge.
// Invalid syntax is rejected before the state machine is entered at all.
func (s *DomainSvc) Attach(ctx context.Context, project *models.Project, domain string) (*DomainResult, error) {
	if !domainRegex.MatchString(domain) {
		return &DomainResult{OK: false, Code: CodeInvalidDomain}, nil
	}

	existing, err := s.repos.Domain.Get(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != models.DomainStatusError {
		return &DomainResult{OK: false, Code: CodeDomainExists, Domain: existing}, nil
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	d := &models.Domain{
		ID:        uuid.New().String(),
		ProjectID: project.ID,
		Domain:    domain,
		Status:    models.DomainStatusPendingDNS,
		Token:     token,
		DNSInstructions: fmt.Sprintf(
			"Create a TXT record at %s with the value %q, then re-run the domain check.",
			s.challengeHost(domain), s.expectedValue(token)),
		CreatedAt: s.Now().UTC(),
	}
	if err := s.repos.Domain.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save domain: %w", err)
	}

	s.log.Info().Str("project_id", project.ID).Str("domain", domain).Msg("Domain attached")
	return &DomainResult{OK: true, Domain: d}, nil
}

// Check performs one verification poll. It queries the public resolver for
// the challenge TXT record and advances state only on a match; otherwise the
// state is left unchanged and a diagnostic is returned so the caller can
// debug propagation delay.
func (s *DomainSvc) Check(ctx context.Context, project *models.Project) (*DomainCheckResult, error) {
	d, err := s.repos.Domain.Get(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return &DomainCheckResult{OK: false, Code: CodeNotFound}, nil
	}
	if d.Status == models.DomainStatusError {
		return &DomainCheckResult{OK: false, Code: CodeDomainError, Status: d.Status, Message: d.Error}, nil
	}

	now := s.Now().UTC()
	d.LastCheckedAt = &now

	// A verified domain never regresses; the remaining work is certificate
	// provisioning.
	if d.Status.AtLeast(models.DomainStatusVerified) {
		if d.Status == models.DomainStatusVerified {
			if err := s.tryProvision(ctx, d); err != nil {
				return nil, err
			}
		}
		if err := s.repos.Domain.Save(ctx, d); err != nil {
			return nil, err
		}
		return &DomainCheckResult{OK: true, Verified: true, Status: d.Status}, nil
	}

	if d.Status == models.DomainStatusPendingDNS {
		d.Status = models.DomainStatusVerifying
	}

	host := s.challengeHost(d.Domain)
	expected := s.expectedValue(d.Token)

	values, lookupErr := s.resolver.LookupTXT(ctx, host)
	if lookupErr != nil {
		if err := s.repos.Domain.Save(ctx, d); err != nil {
			return nil, err
		}
		s.log.Warn().Err(lookupErr).Str("host", host).Msg("DNS lookup failed")
		return &DomainCheckResult{
			OK:          false,
			Code:        CodeDNSLookupFailed,
			Verified:    false,
			Status:      d.Status,
			QueriedHost: host,
			Expected:    expected,
			Message:     lookupErr.Error(),
		}, nil
	}

	if !contains(values, expected) {
		if err := s.repos.Domain.Save(ctx, d); err != nil {
			return nil, err
		}
		return &DomainCheckResult{
			OK:          true,
			Verified:    false,
			Status:      d.Status,
			QueriedHost: host,
			Expected:    expected,
			Seen:        values,
			Message:     "challenge record not found; DNS propagation can take a while",
		}, nil
	}

	d.Status = models.DomainStatusVerified
	if err := s.tryProvision(ctx, d); err != nil {
		return nil, err
	}
	if err := s.repos.Domain.Save(ctx, d); err != nil {
		return nil, err
	}

	// Routing flips to the custom domain once verified.
	project.VerifiedDomain = d.Domain
	project.UpdatedAt = now
	if err := s.repos.Project.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("flip project routing: %w", err)
	}

	s.log.Info().Str("project_id", project.ID).Str("domain", d.Domain).Str("status", string(d.Status)).Msg("Domain verified")
	return &DomainCheckResult{OK: true, Verified: true, Status: d.Status, QueriedHost: host}, nil
}

// Get returns the project's domain record
func (s *DomainSvc) Get(ctx context.Context, projectID string) (*models.Domain, error) {
	return s.repos.Domain.Get(ctx, projectID)
}

// tryProvision asks the certificate collaborator to confirm; not-yet-active
// is a normal outcome and the domain stays at verified until a later poll.
func (s *DomainSvc) tryProvision(ctx context.Context, d *models.Domain) error {
	active, err := s.certs.Provision(ctx, d.Domain)
	if err != nil {
		s.log.Warn().Err(err).Str("domain", d.Domain).Msg("Certificate provisioning check failed")
		return nil
	}
	if active {
		d.Status = models.DomainStatusSSLActive
	}
	return nil
}

func (s *DomainSvc) challengeHost(domain string) string {
	return fmt.Sprintf("_%s-verification.%s", s.cfg.ChallengeLabel, domain)
}

func (s *DomainSvc) expectedValue(token string) string {
	return fmt.Sprintf("%s=%s", s.cfg.ChallengeLabel, token)
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
