package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/api"
	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/mocks"
	"github.com/siteforge/content-pipeline/internal/repository"
	"github.com/siteforge/content-pipeline/internal/service"
	"github.com/siteforge/content-pipeline/internal/store"
)

const testSecret = "test-secret"

const readyDoc = `<html>
<head>
<title>Bluebird Bakery</title>
<meta name="description" content="Fresh sourdough daily.">
</head>
<body>
<h1>Bread worth waking up for</h1>
<p>Trusted by the whole neighborhood. Loaves from $6.</p>
<a href="/order">Buy now</a>
</body>
</html>`

type testEnv struct {
	router    *gin.Engine
	store     *mocks.MemStore
	generator *mocks.MockGenerator
	billing   *mocks.MockBilling
	resolver  *mocks.MockResolver
	certs     *mocks.MockCertProvisioner
}

func setupTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		store:     mocks.NewMemStore(),
		generator: &mocks.MockGenerator{Output: readyDoc},
		billing:   &mocks.MockBilling{Entitled: true},
		resolver:  mocks.NewMockResolver(),
		certs:     &mocks.MockCertProvisioner{},
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:             "8080",
			PublicBaseDomain: "sites.test",
		},
		Auth:       config.AuthConfig{JWTSecret: testSecret},
		Generation: config.GenerationConfig{Timeout: time.Second},
		DNS:        config.DNSConfig{ChallengeLabel: "siteforge"},
		Marketing:  config.MarketingConfig{PublishLogCap: 50},
	}

	repos := repository.New(env.store)
	services := service.NewServices(repos, service.Collaborators{
		Generator: env.generator,
		Billing:   env.billing,
		Resolver:  env.resolver,
		Certs:     env.certs,
	}, cfg, zerolog.Nop())

	env.router = api.NewRouter(services, cfg, zerolog.Nop())
	return env
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w, response
}

func (e *testEnv) createProject(t *testing.T, token, name string) string {
	t.Helper()
	w, resp := e.do(t, "POST", "/v1/projects", token, map[string]string{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	project := resp["project"].(map[string]interface{})
	return project["id"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv()

	w, resp := env.do(t, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
	if resp["service"] != "content-pipeline" {
		t.Errorf("Expected service name, got %v", resp["service"])
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupTestEnv()

	w, _ := env.do(t, "POST", "/v1/projects", "", map[string]string{"name": "X"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}

	w, _ = env.do(t, "POST", "/v1/projects", "not-a-jwt", map[string]string{"name": "X"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a garbage token, got %d", w.Code)
	}
}

func TestProjectOwnership(t *testing.T) {
	env := setupTestEnv()
	owner := signToken(t, "owner-1")
	stranger := signToken(t, "owner-2")

	projectID := env.createProject(t, owner, "Mine")

	w, _ := env.do(t, "GET", "/v1/projects/"+projectID, stranger, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("A foreign project must read as 404, got %d", w.Code)
	}

	w, _ = env.do(t, "GET", "/v1/projects/"+projectID, owner, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Owner access failed: %d", w.Code)
	}
}

func TestPipeline_RunToPublish(t *testing.T) {
	env := setupTestEnv()
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")

	// Generate: run is created and executed in one request
	w, resp := env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/runs", projectID), token,
		map[string]string{"prompt": "a bakery landing page"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create run: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	run := resp["run"].(map[string]interface{})
	if run["status"] != "complete" {
		t.Fatalf("Expected a complete run, got %v", run)
	}

	// One version appeared
	w, resp = env.do(t, "GET", fmt.Sprintf("/v1/projects/%s/versions", projectID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list versions: got %d", w.Code)
	}
	if resp["count"].(float64) != 1 {
		t.Fatalf("Expected 1 version, got %v", resp["count"])
	}

	// Publish passes both gates
	w, resp = env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/publish", projectID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp["ok"] != true {
		t.Fatalf("Expected publish to succeed, got %v", resp)
	}
	if !strings.Contains(resp["public_url"].(string), projectID+".sites.test") {
		t.Errorf("Expected platform subdomain URL, got %v", resp["public_url"])
	}
}

func TestPipeline_PublishBlockedByAudit(t *testing.T) {
	env := setupTestEnv()
	env.generator.Output = strings.Replace(readyDoc, `<a href="/order">Buy now</a>`, "", 1)
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")

	env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/runs", projectID), token,
		map[string]string{"prompt": "a bakery landing page"})

	w, resp := env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/publish", projectID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("A gate denial is an expected outcome, got %d", w.Code)
	}
	if resp["ok"] != false || resp["code"] != "NOT_READY" {
		t.Fatalf("Expected NOT_READY, got %v", resp)
	}
	auditResult := resp["audit"].(map[string]interface{})
	missing := auditResult["missing"].([]interface{})
	if len(missing) == 0 {
		t.Error("NOT_READY must carry the audit's missing items")
	}
}

func TestPipeline_PublishUpgradeRequired(t *testing.T) {
	env := setupTestEnv()
	env.billing.Entitled = false
	env.billing.UpgradeURL = "https://billing.test/upgrade/xyz"
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")

	env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/runs", projectID), token,
		map[string]string{"prompt": "a bakery landing page"})

	w, resp := env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/publish", projectID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if resp["code"] != "UPGRADE_REQUIRED" {
		t.Fatalf("Expected UPGRADE_REQUIRED, got %v", resp)
	}
	if resp["upgrade_url"] != "https://billing.test/upgrade/xyz" {
		t.Errorf("Expected the upgrade URL, got %v", resp["upgrade_url"])
	}
}

func TestPipeline_RollbackEndpoint(t *testing.T) {
	env := setupTestEnv()
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")

	env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/runs", projectID), token,
		map[string]string{"prompt": "first"})
	env.generator.Output = strings.Replace(readyDoc, "Bluebird", "Redbird", 1)
	env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/runs", projectID), token,
		map[string]string{"prompt": "second"})

	_, resp := env.do(t, "GET", fmt.Sprintf("/v1/projects/%s/versions", projectID), token, nil)
	versions := resp["versions"].([]interface{})
	if len(versions) != 2 {
		t.Fatalf("Expected 2 versions, got %d", len(versions))
	}
	oldest := versions[1].(map[string]interface{})
	versionID := oldest["version_id"].(string)

	w, resp := env.do(t, "POST",
		fmt.Sprintf("/v1/projects/%s/versions/%s/rollback", projectID, versionID), token, nil)
	if w.Code != http.StatusOK || resp["ok"] != true {
		t.Fatalf("Rollback failed: %d %v", w.Code, resp)
	}

	// Rollback is a pointer move: the log still has two entries
	_, resp = env.do(t, "GET", fmt.Sprintf("/v1/projects/%s/versions", projectID), token, nil)
	if resp["count"].(float64) != 2 {
		t.Errorf("Rollback must not change the version log, got %v", resp["count"])
	}
}

func TestDomainVerificationFlow(t *testing.T) {
	env := setupTestEnv()
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")

	// Attach issues the challenge
	w, resp := env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/domains", projectID), token,
		map[string]string{"domain": "example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("attach: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	domain := resp["domain"].(map[string]interface{})
	if domain["status"] != "pending_dns" {
		t.Fatalf("Expected pending_dns, got %v", domain["status"])
	}
	challengeToken := domain["token"].(string)

	// First poll: record not yet visible
	w, resp = env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/domains/check", projectID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("check: got %d", w.Code)
	}
	if resp["verified"] != false {
		t.Fatalf("Expected unverified before propagation, got %v", resp)
	}
	if resp["queried_host"] != "_siteforge-verification.example.com" {
		t.Errorf("Diagnostic host wrong: %v", resp["queried_host"])
	}

	// Operator publishes the TXT record; the next poll verifies
	env.resolver.Values["_siteforge-verification.example.com"] = []string{"siteforge=" + challengeToken}
	w, resp = env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/domains/check", projectID), token, nil)
	if w.Code != http.StatusOK || resp["verified"] != true {
		t.Fatalf("Expected verified, got %d %v", w.Code, resp)
	}

	// Published URL now routes to the custom domain
	_, resp = env.do(t, "GET", "/v1/projects/"+projectID, token, nil)
	if resp["public_url"] != "https://example.com" {
		t.Errorf("Expected custom domain URL, got %v", resp["public_url"])
	}
}

func TestDomainAttachInvalid(t *testing.T) {
	env := setupTestEnv()
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")

	w, resp := env.do(t, "POST", fmt.Sprintf("/v1/projects/%s/domains", projectID), token,
		map[string]string{"domain": "not a domain"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if resp["code"] != "INVALID_DOMAIN" {
		t.Errorf("Expected INVALID_DOMAIN, got %v", resp["code"])
	}
}

func TestMarketingFlow(t *testing.T) {
	env := setupTestEnv()
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")
	base := fmt.Sprintf("/v1/projects/%s/marketing", projectID)

	w, resp := env.do(t, "POST", base, token,
		map[string]string{"channel": "email", "title": "Launch", "body": "We are live"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	item := resp["item"].(map[string]interface{})
	itemID := item["id"].(string)

	w, _ = env.do(t, "POST", base+"/"+itemID+"/approve", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: got %d", w.Code)
	}

	// Scheduling in the past is rejected
	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	w, resp = env.do(t, "POST", base+"/"+itemID+"/schedule", token,
		map[string]string{"scheduled_for": past})
	if w.Code != http.StatusBadRequest || resp["code"] != "INVALID_SCHEDULE" {
		t.Fatalf("Expected INVALID_SCHEDULE, got %d %v", w.Code, resp)
	}

	// Near-future schedule, then sweep after it becomes due
	soon := time.Now().Add(50 * time.Millisecond).UTC().Format(time.RFC3339Nano)
	w, _ = env.do(t, "POST", base+"/"+itemID+"/schedule", token,
		map[string]string{"scheduled_for": soon})
	if w.Code != http.StatusOK {
		t.Fatalf("schedule: got %d", w.Code)
	}

	time.Sleep(100 * time.Millisecond)
	w, resp = env.do(t, "POST", base+"/sweep", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sweep: got %d", w.Code)
	}
	if resp["published"].(float64) != 1 {
		t.Errorf("Expected 1 published, got %v", resp["published"])
	}

	_, resp = env.do(t, "GET", base, token, nil)
	items := resp["items"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["status"] != "published" {
		t.Errorf("Expected one published item, got %v", items)
	}
}

func TestStoreFaultSurfacesAsUnavailable(t *testing.T) {
	env := setupTestEnv()
	token := signToken(t, "owner-1")
	projectID := env.createProject(t, token, "Bakery")

	env.store.GetErr = fmt.Errorf("get record: %w", store.ErrStoreUnavailable)
	w, resp := env.do(t, "GET", "/v1/projects/"+projectID, token, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", w.Code)
	}
	if resp["code"] != "STORE_UNAVAILABLE" {
		t.Errorf("Expected STORE_UNAVAILABLE, got %v", resp["code"])
	}
}
