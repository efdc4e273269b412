package clients

import (
	"context"
)

// Generator is the external text-generation collaborator. Generate must
// return a complete, self-contained HTML document or the run engine treats
// the call as failed.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Billing is the external plan/subscription collaborator.
type Billing interface {
	IsEntitled(ctx context.Context, userID, capability string) (bool, error)
	CreateUpgradeSession(ctx context.Context, userID, projectID string) (string, error)
}

// TXTResolver looks up DNS TXT records through a public resolver.
type TXTResolver interface {
	LookupTXT(ctx context.Context, hostname string) ([]string, error)
}

// CertProvisioner is the certificate provisioning collaborator. Provision
// returns true once a certificate is active for the domain.
type CertProvisioner interface {
	Provision(ctx context.Context, domain string) (bool, error)
}
