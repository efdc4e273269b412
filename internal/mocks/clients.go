package mocks

import (
	"context"

	"github.com/siteforge/content-pipeline/internal/clients"
)

// MockGenerator is a mock implementation of clients.Generator
type MockGenerator struct {
	GenerateFunc  func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	GenerateCalls int
	Output        string
	Err           error
}

// Verify interface compliance
var _ clients.Generator = (*MockGenerator)(nil)

func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.GenerateCalls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemPrompt, userPrompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Output, nil
}

// MockBilling is a mock implementation of clients.Billing
type MockBilling struct {
	Entitled     bool
	EntitledErr  error
	UpgradeURL   string
	UpgradeErr   error
	CheckedUsers []string
}

var _ clients.Billing = (*MockBilling)(nil)

func (m *MockBilling) IsEntitled(ctx context.Context, userID, capability string) (bool, error) {
	m.CheckedUsers = append(m.CheckedUsers, userID)
	if m.EntitledErr != nil {
		return false, m.EntitledErr
	}
	return m.Entitled, nil
}

func (m *MockBilling) CreateUpgradeSession(ctx context.Context, userID, projectID string) (string, error) {
	if m.UpgradeErr != nil {
		return "", m.UpgradeErr
	}
	if m.UpgradeURL == "" {
		return "https://billing.test/upgrade", nil
	}
	return m.UpgradeURL, nil
}

// MockResolver is a mock implementation of clients.TXTResolver
type MockResolver struct {
	Values      map[string][]string
	Err         error
	LookupCalls []string
}

var _ clients.TXTResolver = (*MockResolver)(nil)

func NewMockResolver() *MockResolver {
	return &MockResolver{Values: make(map[string][]string)}
}

func (m *MockResolver) LookupTXT(ctx context.Context, hostname string) ([]string, error) {
	m.LookupCalls = append(m.LookupCalls, hostname)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Values[hostname], nil
}

// MockCertProvisioner is a mock implementation of clients.CertProvisioner
type MockCertProvisioner struct {
	Active          bool
	Err             error
	ProvisionCalls  int
	LastDomainAsked string
}

var _ clients.CertProvisioner = (*MockCertProvisioner)(nil)

func (m *MockCertProvisioner) Provision(ctx context.Context, domain string) (bool, error) {
	m.ProvisionCalls++
	m.LastDomainAsked = domain
	if m.Err != nil {
		return false, m.Err
	}
	return m.Active, nil
}
