package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/mocks"
	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
	"github.com/siteforge/content-pipeline/internal/service"
)

func newDomainSvc(repos *repository.Repositories, resolver *mocks.MockResolver, certs *mocks.MockCertProvisioner) *service.DomainSvc {
	cfg := &config.DNSConfig{ChallengeLabel: "siteforge"}
	return service.NewDomainSvc(repos, resolver, certs, cfg, testLogger())
}

func TestDomainService_AttachInvalidSyntax(t *testing.T) {
	repos, _ := newTestRepos()
	svc := newDomainSvc(repos, mocks.NewMockResolver(), &mocks.MockCertProvisioner{})

	for _, bad := range []string{"", "no-dots", "-leading.com", "exa mple.com", "trailing-.com"} {
		result, err := svc.Attach(context.Background(), testProject("proj-1"), bad)
		if err != nil {
			t.Fatalf("Attach(%q) failed: %v", bad, err)
		}
		if result.OK || result.Code != service.CodeInvalidDomain {
			t.Errorf("Attach(%q): expected INVALID_DOMAIN, got %+v", bad, result)
		}
	}
}

func TestDomainService_AttachIssuesChallenge(t *testing.T) {
	repos, _ := newTestRepos()
	svc := newDomainSvc(repos, mocks.NewMockResolver(), &mocks.MockCertProvisioner{})
	ctx := context.Background()

	result, err := svc.Attach(ctx, testProject("proj-1"), "example.com")
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if !result.OK {
		t.Fatalf("Expected OK, got %+v", result)
	}
	d := result.Domain
	if d.Status != models.DomainStatusPendingDNS {
		t.Errorf("Expected pending_dns, got %s", d.Status)
	}
	if d.Token == "" {
		t.Error("Expected a verification token")
	}
	if !strings.Contains(d.DNSInstructions, "_siteforge-verification.example.com") {
		t.Errorf("Instructions must name the challenge host, got %q", d.DNSInstructions)
	}
	if !strings.Contains(d.DNSInstructions, "siteforge="+d.Token) {
		t.Errorf("Instructions must name the expected value, got %q", d.DNSInstructions)
	}

	// A second attach is rejected while the first is in flight
	again, err := svc.Attach(ctx, testProject("proj-1"), "other.com")
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if again.OK || again.Code != service.CodeDomainExists {
		t.Errorf("Expected DOMAIN_EXISTS, got %+v", again)
	}
}

func TestDomainService_CheckWithoutDomain(t *testing.T) {
	repos, _ := newTestRepos()
	svc := newDomainSvc(repos, mocks.NewMockResolver(), &mocks.MockCertProvisioner{})

	result, err := svc.Check(context.Background(), testProject("proj-1"))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.OK || result.Code != service.CodeNotFound {
		t.Errorf("Expected NOT_FOUND, got %+v", result)
	}
}

func TestDomainService_CheckBeforePropagation(t *testing.T) {
	repos, _ := newTestRepos()
	resolver := mocks.NewMockResolver()
	svc := newDomainSvc(repos, resolver, &mocks.MockCertProvisioner{})
	ctx := context.Background()
	project := testProject("proj-1")

	attach, _ := svc.Attach(ctx, project, "example.com")

	result, err := svc.Check(ctx, project)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !result.OK || result.Verified {
		t.Fatalf("Expected OK unverified, got %+v", result)
	}
	if result.Status != models.DomainStatusVerifying {
		t.Errorf("First check should advance pending_dns to verifying, got %s", result.Status)
	}
	if result.QueriedHost != "_siteforge-verification.example.com" {
		t.Errorf("Diagnostic queried host wrong: %q", result.QueriedHost)
	}
	if result.Expected != "siteforge="+attach.Domain.Token {
		t.Errorf("Diagnostic expected value wrong: %q", result.Expected)
	}
	if result.Message == "" {
		t.Error("Unverified check should carry a human-readable message")
	}

	// State persisted
	d, _ := svc.Get(ctx, project.ID)
	if d.Status != models.DomainStatusVerifying {
		t.Errorf("Expected persisted verifying, got %s", d.Status)
	}
	if d.LastCheckedAt == nil {
		t.Error("LastCheckedAt should be recorded")
	}
}

func TestDomainService_CheckLookupFailure(t *testing.T) {
	repos, _ := newTestRepos()
	resolver := mocks.NewMockResolver()
	resolver.Err = errors.New("resolver unreachable")
	svc := newDomainSvc(repos, resolver, &mocks.MockCertProvisioner{})
	ctx := context.Background()
	project := testProject("proj-1")

	svc.Attach(ctx, project, "example.com")

	result, err := svc.Check(ctx, project)
	if err != nil {
		t.Fatalf("A lookup failure is a structured outcome, not an error: %v", err)
	}
	if result.OK || result.Code != service.CodeDNSLookupFailed {
		t.Errorf("Expected DNS_LOOKUP_FAILED, got %+v", result)
	}
	if result.QueriedHost == "" || result.Message == "" {
		t.Errorf("Lookup failure must carry a diagnostic, got %+v", result)
	}
}

func TestDomainService_CheckVerifies(t *testing.T) {
	repos, _ := newTestRepos()
	resolver := mocks.NewMockResolver()
	certs := &mocks.MockCertProvisioner{Active: false}
	svc := newDomainSvc(repos, resolver, certs)
	ctx := context.Background()
	project := testProject("proj-1")
	repos.Project.Save(ctx, project)

	attach, _ := svc.Attach(ctx, project, "example.com")
	resolver.Values["_siteforge-verification.example.com"] = []string{
		"unrelated-record",
		"siteforge=" + attach.Domain.Token,
	}

	result, err := svc.Check(ctx, project)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !result.OK || !result.Verified {
		t.Fatalf("Expected verified, got %+v", result)
	}
	if result.Status != models.DomainStatusVerified {
		t.Errorf("Cert not yet active, expected verified, got %s", result.Status)
	}

	// Routing flips to the custom domain
	saved, _ := repos.Project.GetByID(ctx, project.ID)
	if saved.VerifiedDomain != "example.com" {
		t.Errorf("Expected project routing flip, got %q", saved.VerifiedDomain)
	}
}

func TestDomainService_VerifiedNeverRegresses(t *testing.T) {
	repos, _ := newTestRepos()
	resolver := mocks.NewMockResolver()
	certs := &mocks.MockCertProvisioner{Active: false}
	svc := newDomainSvc(repos, resolver, certs)
	ctx := context.Background()
	project := testProject("proj-1")
	repos.Project.Save(ctx, project)

	attach, _ := svc.Attach(ctx, project, "example.com")
	resolver.Values["_siteforge-verification.example.com"] = []string{"siteforge=" + attach.Domain.Token}
	if _, err := svc.Check(ctx, project); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	// The record disappears; verification must hold
	resolver.Values = map[string][]string{}
	lookupsBefore := len(resolver.LookupCalls)

	result, err := svc.Check(ctx, project)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !result.Verified {
		t.Errorf("A verified domain must never regress, got %+v", result)
	}
	if len(resolver.LookupCalls) != lookupsBefore {
		t.Error("No DNS lookup is needed once verified")
	}
}

func TestDomainService_CertificateActivation(t *testing.T) {
	repos, _ := newTestRepos()
	resolver := mocks.NewMockResolver()
	certs := &mocks.MockCertProvisioner{Active: false}
	svc := newDomainSvc(repos, resolver, certs)
	ctx := context.Background()
	project := testProject("proj-1")
	repos.Project.Save(ctx, project)

	attach, _ := svc.Attach(ctx, project, "example.com")
	resolver.Values["_siteforge-verification.example.com"] = []string{"siteforge=" + attach.Domain.Token}
	svc.Check(ctx, project)

	// Certificate becomes active on a later poll
	certs.Active = true
	result, err := svc.Check(ctx, project)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.Status != models.DomainStatusSSLActive {
		t.Errorf("Expected ssl_active, got %s", result.Status)
	}

	d, _ := svc.Get(ctx, project.ID)
	if d.Status != models.DomainStatusSSLActive {
		t.Errorf("Expected persisted ssl_active, got %s", d.Status)
	}
}
