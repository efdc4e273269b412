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

func newPublishSvc(repos *repository.Repositories, billing *mocks.MockBilling) *service.PublishSvc {
	cfg := &config.ServerConfig{PublicBaseDomain: "sites.test"}
	return service.NewPublishSvc(repos, billing, cfg, testLogger())
}

func seedLatest(t *testing.T, repos *repository.Repositories, projectID, html string) {
	t.Helper()
	ctx := context.Background()
	content := &models.ContentRecord{Ref: "ref-" + projectID, HTML: html}
	if err := repos.Content.Save(ctx, content); err != nil {
		t.Fatalf("seed content: %v", err)
	}
	versions := service.NewVersionSvc(repos, testLogger())
	if _, err := versions.Append(ctx, projectID, content.Ref, "seed"); err != nil {
		t.Fatalf("seed version: %v", err)
	}
}

func testProject(id string) *models.Project {
	return &models.Project{ID: id, OwnerID: "owner-1", Name: "Test", Plan: models.PlanFree}
}

func TestPublishService_NoContent(t *testing.T) {
	repos, _ := newTestRepos()
	svc := newPublishSvc(repos, &mocks.MockBilling{Entitled: true})

	result, err := svc.Publish(context.Background(), testProject("proj-1"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if result.OK || result.Code != service.CodeNoContent {
		t.Errorf("Expected NO_CONTENT, got %+v", result)
	}
}

func TestPublishService_BlockedByAudit(t *testing.T) {
	repos, _ := newTestRepos()
	billing := &mocks.MockBilling{Entitled: true}
	svc := newPublishSvc(repos, billing)
	ctx := context.Background()
	seedLatest(t, repos, "proj-1", noCTADoc)

	result, err := svc.Publish(ctx, testProject("proj-1"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if result.OK || result.Code != service.CodeNotReady {
		t.Fatalf("Expected NOT_READY, got %+v", result)
	}
	if result.Audit == nil || len(result.Audit.Missing) == 0 {
		t.Error("NOT_READY must carry the audit with missing items")
	}

	// Audit runs before billing: no entitlement call for unready content
	if len(billing.CheckedUsers) != 0 {
		t.Error("Billing must not be consulted when the audit blocks")
	}

	// Nothing may reach the published slot
	slot, _ := repos.Version.GetPublished(ctx, "proj-1")
	if slot != nil {
		t.Errorf("Published slot must stay empty, got %+v", slot)
	}
}

func TestPublishService_UpgradeRequired(t *testing.T) {
	repos, _ := newTestRepos()
	billing := &mocks.MockBilling{Entitled: false, UpgradeURL: "https://billing.test/upgrade/abc"}
	svc := newPublishSvc(repos, billing)
	ctx := context.Background()
	seedLatest(t, repos, "proj-1", completeDoc)

	result, err := svc.Publish(ctx, testProject("proj-1"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if result.OK || result.Code != service.CodeUpgradeRequired {
		t.Fatalf("Expected UPGRADE_REQUIRED, got %+v", result)
	}
	if result.UpgradeURL != "https://billing.test/upgrade/abc" {
		t.Errorf("Expected upgrade URL, got %q", result.UpgradeURL)
	}

	slot, _ := repos.Version.GetPublished(ctx, "proj-1")
	if slot != nil {
		t.Errorf("Published slot must stay empty, got %+v", slot)
	}
}

func TestPublishService_UpgradeSessionFailureStillDenies(t *testing.T) {
	repos, _ := newTestRepos()
	billing := &mocks.MockBilling{Entitled: false, UpgradeErr: errors.New("billing down")}
	svc := newPublishSvc(repos, billing)
	seedLatest(t, repos, "proj-1", completeDoc)

	result, err := svc.Publish(context.Background(), testProject("proj-1"))
	if err != nil {
		t.Fatalf("Upgrade session failure must not fail the request: %v", err)
	}
	if result.OK || result.Code != service.CodeUpgradeRequired {
		t.Errorf("Expected UPGRADE_REQUIRED, got %+v", result)
	}
	if result.UpgradeURL != "" {
		t.Errorf("Expected empty upgrade URL on session failure, got %q", result.UpgradeURL)
	}
}

func TestPublishService_EntitlementErrorPropagates(t *testing.T) {
	repos, _ := newTestRepos()
	billing := &mocks.MockBilling{EntitledErr: errors.New("billing unreachable")}
	svc := newPublishSvc(repos, billing)
	seedLatest(t, repos, "proj-1", completeDoc)

	if _, err := svc.Publish(context.Background(), testProject("proj-1")); err == nil {
		t.Fatal("Expected an error when the entitlement check cannot be performed")
	}
}

func TestPublishService_Success(t *testing.T) {
	repos, _ := newTestRepos()
	svc := newPublishSvc(repos, &mocks.MockBilling{Entitled: true})
	ctx := context.Background()
	seedLatest(t, repos, "proj-1", completeDoc)

	result, err := svc.Publish(ctx, testProject("proj-1"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !result.OK {
		t.Fatalf("Expected OK, got %+v", result)
	}
	if result.PublicURL != "https://proj-1.sites.test" {
		t.Errorf("Expected platform subdomain URL, got %q", result.PublicURL)
	}
	if result.PublishedAt == nil {
		t.Error("PublishedAt should be set")
	}

	slot, _ := repos.Version.GetPublished(ctx, "proj-1")
	if slot == nil || slot.ContentRef != "ref-proj-1" {
		t.Errorf("Expected published slot at ref-proj-1, got %+v", slot)
	}
}

func TestPublishService_RepublishAfterRollback(t *testing.T) {
	repos, _ := newTestRepos()
	svc := newPublishSvc(repos, &mocks.MockBilling{Entitled: true})
	versions := service.NewVersionSvc(repos, testLogger())
	ctx := context.Background()

	good := &models.ContentRecord{Ref: "ref-good", HTML: completeDoc}
	repos.Content.Save(ctx, good)
	v1, _ := versions.Append(ctx, "proj-1", "ref-good", "good")

	better := &models.ContentRecord{Ref: "ref-better", HTML: strings.Replace(completeDoc, "Bluebird", "Redbird", 1)}
	repos.Content.Save(ctx, better)
	versions.Append(ctx, "proj-1", "ref-better", "better")

	if _, err := versions.Rollback(ctx, "proj-1", v1.ID); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	result, err := svc.Publish(ctx, testProject("proj-1"))
	if err != nil || !result.OK {
		t.Fatalf("Publish failed: %v %+v", err, result)
	}
	slot, _ := repos.Version.GetPublished(ctx, "proj-1")
	if slot.ContentRef != "ref-good" {
		t.Errorf("Publish must promote the rolled-back latest, got %s", slot.ContentRef)
	}
}

func TestPublishService_PublicURLPrefersVerifiedDomain(t *testing.T) {
	repos, _ := newTestRepos()
	svc := newPublishSvc(repos, &mocks.MockBilling{Entitled: true})

	p := testProject("proj-1")
	if got := svc.PublicURL(p); got != "https://proj-1.sites.test" {
		t.Errorf("Expected platform URL, got %q", got)
	}
	p.VerifiedDomain = "example.com"
	if got := svc.PublicURL(p); got != "https://example.com" {
		t.Errorf("Expected custom domain URL, got %q", got)
	}
}
