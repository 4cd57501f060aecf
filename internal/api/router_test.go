package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/notify"
	"github.com/prisonrp/ruleswiki/pkg/config"
)

const (
	testJWTSecret   = "test-jwt-secret"
	testTokenSecret = "test-ops-secret"
	testSteamID     = "76561198000000001"
)

func newTestServer(t *testing.T) (*gin.Engine, *db.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbCfg := &config.DatabaseConfig{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	}
	database, err := db.New(dbCfg, "ERROR")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(database); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Promote the seeded owner so every staff endpoint is reachable.
	if err := database.Model(&models.StaffUser{}).
		Where("steam_id = ?", testSteamID).
		Update("permission_level", "owner").Error; err != nil {
		t.Fatalf("promote seeded user: %v", err)
	}

	authCfg := &config.AuthConfig{
		JWTSecret:   testJWTSecret,
		TokenSecret: testTokenSecret,
		TokenTTL:    1,
	}

	engine := gin.New()
	router := NewRouter(database, nil, authCfg, notify.Noop{})
	router.SetupRoutes(engine)
	return engine, database
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, engine *gin.Engine) string {
	t.Helper()

	rec := doJSON(t, engine, http.MethodPost, "/api/auth/token", "", gin.H{
		"steam_id": testSteamID,
		"secret":   testTokenSecret,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty token from login")
	}
	return resp.Token
}

func TestHealth(t *testing.T) {
	engine, _ := newTestServer(t)
	rec := doJSON(t, engine, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthToken(t *testing.T) {
	engine, _ := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"valid credentials", gin.H{"steam_id": testSteamID, "secret": testTokenSecret}, http.StatusOK},
		{"wrong secret", gin.H{"steam_id": testSteamID, "secret": "nope"}, http.StatusUnauthorized},
		{"unknown steam id", gin.H{"steam_id": "76561198999999999", "secret": testTokenSecret}, http.StatusUnauthorized},
		{"missing fields", gin.H{"steam_id": testSteamID}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, engine, http.MethodPost, "/api/auth/token", "", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestStaffRoutesRequireAuth(t *testing.T) {
	engine, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/staff/rules"},
		{http.MethodPost, "/api/staff/rules"},
		{http.MethodGet, "/api/staff/users"},
		{http.MethodGet, "/api/staff/activity"},
		{http.MethodGet, "/api/rules/1/cross-references"},
	}
	for _, p := range paths {
		rec := doJSON(t, engine, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}

	rec := doJSON(t, engine, http.MethodGet, "/api/staff/rules", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestInactiveAccountRejected(t *testing.T) {
	engine, database := newTestServer(t)
	token := login(t, engine)

	if err := database.Model(&models.StaffUser{}).
		Where("steam_id = ?", testSteamID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rec := doJSON(t, engine, http.MethodGet, "/api/staff/rules", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated account: status = %d, want 401", rec.Code)
	}
}

func TestRuleLifecycleOverHTTP(t *testing.T) {
	engine, database := newTestServer(t)
	token := login(t, engine)

	// Find the seeded category A.
	var cat models.Category
	if err := database.Where("letter_code = ?", "A").First(&cat).Error; err != nil {
		t.Fatalf("load category: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/staff/rules", token, gin.H{
		"title":      "No RDM",
		"content":    "Do not kill without roleplay reason.",
		"categoryId": cat.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rule: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Rule models.Rule `json:"rule"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Rule.FullCode != "A.1" {
		t.Fatalf("full code = %q, want A.1", created.Rule.FullCode)
	}
	if created.Rule.Status != models.StatusApproved {
		t.Fatalf("owner-created rule status = %q, want approved", created.Rule.Status)
	}

	// Publicly visible by id and by category listing.
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/rules/%d", created.Rule.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public rule fetch: status = %d", rec.Code)
	}
	rec = doJSON(t, engine, http.MethodGet, "/api/rules?category=A", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public rules list: status = %d", rec.Code)
	}

	// Delete and confirm the public view is gone.
	rec = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/staff/rules/%d", created.Rule.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete rule: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/rules/%d", created.Rule.ID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted rule fetch: status = %d, want 404", rec.Code)
	}
}

func TestPublicRuleHidesPending(t *testing.T) {
	engine, database := newTestServer(t)
	token := login(t, engine)

	var cat models.Category
	if err := database.Where("letter_code = ?", "A").First(&cat).Error; err != nil {
		t.Fatalf("load category: %v", err)
	}

	// Drafts are invisible on the public surface even by direct id.
	rec := doJSON(t, engine, http.MethodPost, "/api/staff/rules", token, gin.H{
		"title":      "Hidden draft",
		"content":    "Not ready.",
		"categoryId": cat.ID,
		"draft":      true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Rule models.Rule `json:"rule"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Rule.Status != models.StatusDraft {
		t.Fatalf("status = %q, want draft", created.Rule.Status)
	}

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/rules/%d", created.Rule.ID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("draft rule fetch: status = %d, want 404", rec.Code)
	}
}

func TestRejectRemovesRuleFromPublicView(t *testing.T) {
	engine, database := newTestServer(t)
	token := login(t, engine)

	var cat models.Category
	if err := database.Where("letter_code = ?", "A").First(&cat).Error; err != nil {
		t.Fatalf("load category: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/staff/rules", token, gin.H{
		"title":      "No metagaming",
		"content":    "Do not act on out-of-character information.",
		"categoryId": cat.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rule: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Rule models.Rule `json:"rule"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/rules/%d", created.Rule.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public rule fetch: status = %d", rec.Code)
	}

	// Rejecting approved content must retire it from the public surface
	// immediately, not after the cache TTL runs out.
	rec = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/api/staff/rules/%d/reject", created.Rule.ID), token, gin.H{
		"reviewNotes": "overlaps with A.1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reject rule: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/rules/%d", created.Rule.ID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("rejected rule fetch: status = %d, want 404", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	engine, database := newTestServer(t)
	token := login(t, engine)

	// Unknown rule -> 404.
	rec := doJSON(t, engine, http.MethodPut, "/api/staff/rules/9999/approve", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("approve missing rule: status = %d, want 404", rec.Code)
	}

	// Deleting a category that owns rules -> 409.
	var cat models.Category
	if err := database.Where("letter_code = ?", "A").First(&cat).Error; err != nil {
		t.Fatalf("load category: %v", err)
	}
	rule := &models.Rule{CategoryID: cat.ID, RuleNumber: 1, FullCode: "A.1", Title: "Keeper", Content: "x"}
	rule.Status = models.StatusApproved
	rule.SubmittedBy = sql.NullInt64{}
	if err := database.Create(rule).Error; err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	rec = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/staff/categories/%d", cat.ID), token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete non-empty category: status = %d, want 409", rec.Code)
	}

	// Self cross-reference -> 400.
	rec = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/rules/%d/cross-references", rule.ID), token, gin.H{
		"target_rule_id": rule.ID,
		"reference_type": models.ReferenceRelated,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self reference: status = %d, want 400", rec.Code)
	}

	// Unknown reference type -> 400, not 500.
	rec = doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/rules/%d/cross-references", rule.ID), token, gin.H{
		"target_rule_id": rule.ID + 1,
		"reference_type": "bogus",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown reference type: status = %d, want 400", rec.Code)
	}

	// Blank category name -> 400, not 500.
	rec = doJSON(t, engine, http.MethodPost, "/api/staff/categories", token, gin.H{
		"name":        "   ",
		"letter_code": "Z",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank category name: status = %d, want 400", rec.Code)
	}
}

func TestRequestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(trace.NewNoopTracerProvider()) })

	engine, _ := newTestServer(t)
	rec := doJSON(t, engine, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status = %d, want 200", rec.Code)
	}

	found := false
	for _, span := range recorder.Ended() {
		if span.Name() == "GET /health" {
			found = true
		}
	}
	if !found {
		t.Error("no span recorded for GET /health")
	}
}

func TestRequestIDHeader(t *testing.T) {
	engine, _ := newTestServer(t)

	rec := doJSON(t, engine, http.MethodGet, "/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want the caller-provided id echoed", got)
	}
}
