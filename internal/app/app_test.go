package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"family-finance-go/internal/auth"
	"family-finance-go/internal/config"
	"family-finance-go/internal/db"
	"family-finance-go/internal/export"
	"family-finance-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	momID = "11111111-1111-4111-8111-111111111111"
	dadID = "22222222-2222-4222-8222-222222222222"
	kidID = "33333333-3333-4333-8333-333333333333"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	tokens  *auth.JWTManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := config.Config{
		HTTPPort: "8080",
		Auth:     config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Budget:   config.BudgetConfig{WarningThreshold: 0.7, CriticalThreshold: 0.9, TimeZone: "UTC"},
		Reports:  config.ReportsConfig{TopExpensesLimit: 5, SpendingTrendMonths: 6, Concurrency: 2},
		Metrics:  config.MetricsConfig{Enabled: true},
	}

	log := logger.NewNop()
	gormDB, err := db.NewSQLite(db.MemoryDSN, log)
	require.NoError(t, err)

	application, err := NewWithDB(cfg, gormDB, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	return &testAPI{
		t:       t,
		handler: application.HTTPServer().Handler,
		tokens:  auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}
}

func (a *testAPI) do(userID, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := a.tokens.Generate(userID, userID[:4]+"@example.com", strings.ToUpper(userID[:1])+"-user")
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) decode(rec *httptest.ResponseRecorder, status int) map[string]any {
	a.t.Helper()
	require.Equal(a.t, status, rec.Code, rec.Body.String())
	var out map[string]any
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (a *testAPI) decodeList(rec *httptest.ResponseRecorder, status int) []any {
	a.t.Helper()
	require.Equal(a.t, status, rec.Code, rec.Body.String())
	var out []any
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// family makes mom the head with dad and kid as members.
func (a *testAPI) family() {
	a.t.Helper()
	created := a.decode(a.do(momID, http.MethodPost, "/api/families", map[string]string{"name": "Smiths"}), http.StatusCreated)
	code := created["code"].(string)
	for _, member := range []string{dadID, kidID} {
		a.decode(a.do(member, http.MethodPost, "/api/families/join", map[string]string{"code": code}), http.StatusOK)
	}
}

func (a *testAPI) notificationTypes(userID string) []string {
	a.t.Helper()
	page := a.decode(a.do(userID, http.MethodGet, "/api/notifications", nil), http.StatusOK)
	var types []string
	for _, item := range page["items"].([]any) {
		types = append(types, item.(map[string]any)["type"].(string))
	}
	return types
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	health := api.decode(api.do("", http.MethodGet, "/api/health", nil), http.StatusOK)
	assert.Equal(t, "ok", health["status"])

	rec := api.do("", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "family_finance_http_requests_total")
}

func TestRequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)

	body := api.decode(api.do("", http.MethodGet, "/api/transactions", nil), http.StatusUnauthorized)
	assert.Equal(t, "invalid_token", body["error"].(map[string]any)["code"])
}

func TestAuthMeReflectsFamilyRole(t *testing.T) {
	api := newTestAPI(t)
	api.family()

	me := api.decode(api.do(momID, http.MethodGet, "/api/auth/me", nil), http.StatusOK)
	assert.Equal(t, true, me["is_family_head"])
	assert.Len(t, me["member_ids"], 2)

	dad := api.decode(api.do(dadID, http.MethodGet, "/api/auth/me", nil), http.StatusOK)
	assert.Equal(t, false, dad["is_family_head"])
	assert.Equal(t, momID, dad["family_head_id"])
}

func TestExpenseTriggersSingleCriticalNotification(t *testing.T) {
	api := newTestAPI(t)

	api.decode(api.do(momID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 1000, "type": "income", "category": "salary", "description": "pay",
	}), http.StatusCreated)
	api.decode(api.do(momID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 950, "type": "expense", "category": "housing",
	}), http.StatusCreated)
	assert.Equal(t, []string{"budget_critical"}, api.notificationTypes(momID))

	api.decode(api.do(momID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 10, "type": "expense", "category": "food",
	}), http.StatusCreated)
	assert.Equal(t, []string{"budget_critical"}, api.notificationTypes(momID))
}

func TestWarningThenHigherSpendStaysSingleNotification(t *testing.T) {
	api := newTestAPI(t)

	api.decode(api.do(dadID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 1000, "type": "income", "category": "salary",
	}), http.StatusCreated)
	api.decode(api.do(dadID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 750, "type": "expense", "category": "housing",
	}), http.StatusCreated)
	assert.Equal(t, []string{"budget_warning"}, api.notificationTypes(dadID))

	api.decode(api.do(dadID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 200, "type": "expense", "category": "food",
	}), http.StatusCreated)
	assert.Equal(t, []string{"budget_warning"}, api.notificationTypes(dadID))
}

func TestTransactionValidationAndOwnership(t *testing.T) {
	api := newTestAPI(t)

	body := api.decode(api.do(momID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 10, "type": "expense", "category": "yachts",
	}), http.StatusBadRequest)
	assert.Equal(t, "invalid_category", body["error"].(map[string]any)["code"])

	created := api.decode(api.do(momID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 10, "type": "expense", "category": "food", "date": "2024-03-05",
	}), http.StatusCreated)
	id := created["id"].(string)

	api.decode(api.do(dadID, http.MethodGet, "/api/transactions/"+id, nil), http.StatusForbidden)

	updated := api.decode(api.do(momID, http.MethodPut, "/api/transactions/"+id, map[string]any{"amount": 12.5}), http.StatusOK)
	assert.Equal(t, 12.5, updated["amount"])

	require.Equal(t, http.StatusNoContent, api.do(momID, http.MethodDelete, "/api/transactions/"+id, nil).Code)
	api.decode(api.do(momID, http.MethodGet, "/api/transactions/"+id, nil), http.StatusNotFound)
}

func TestHeadMayListMemberTransactions(t *testing.T) {
	api := newTestAPI(t)
	api.family()

	api.decode(api.do(kidID, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 5, "type": "expense", "category": "entertainment",
	}), http.StatusCreated)

	page := api.decode(api.do(momID, http.MethodGet, "/api/transactions?user_id="+kidID, nil), http.StatusOK)
	assert.EqualValues(t, 1, page["total"])

	api.decode(api.do(dadID, http.MethodGet, "/api/transactions?user_id="+kidID, nil), http.StatusForbidden)
}

func TestGoalContributionCompletesOnce(t *testing.T) {
	api := newTestAPI(t)
	api.family()

	goal := api.decode(api.do(momID, http.MethodPost, "/api/goals", map[string]any{
		"title":           "Vacation",
		"target_amount":   100,
		"deadline":        time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		"participant_ids": []string{dadID, "44444444-4444-4444-8444-444444444444"},
	}), http.StatusCreated)
	goalID := goal["id"].(string)
	assert.Equal(t, []any{dadID}, goal["participant_ids"])

	api.decode(api.do(kidID, http.MethodPost, "/api/goals/"+goalID+"/contribute", map[string]any{"amount": 10}), http.StatusForbidden)
	api.decode(api.do(dadID, http.MethodPost, "/api/goals/"+goalID+"/contribute", map[string]any{"amount": 0}), http.StatusBadRequest)

	first := api.decode(api.do(dadID, http.MethodPost, "/api/goals/"+goalID+"/contribute", map[string]any{"amount": 60}), http.StatusCreated)
	assert.Equal(t, false, first["goal_completed"])

	second := api.decode(api.do(momID, http.MethodPost, "/api/goals/"+goalID+"/contribute", map[string]any{"amount": 50}), http.StatusCreated)
	assert.Equal(t, true, second["goal_completed"])

	third := api.decode(api.do(dadID, http.MethodPost, "/api/goals/"+goalID+"/contribute", map[string]any{"amount": 5}), http.StatusCreated)
	assert.Equal(t, false, third["goal_completed"])

	progress := api.decode(api.do(momID, http.MethodGet, "/api/goals/"+goalID+"/progress", nil), http.StatusOK)
	assert.Equal(t, 115.0, progress["current_amount"])
	assert.Equal(t, 0.0, progress["remaining_amount"])
	assert.Equal(t, true, progress["is_completed"])

	contributions := api.decodeList(api.do(dadID, http.MethodGet, "/api/goals/"+goalID+"/contributions", nil), http.StatusOK)
	assert.Len(t, contributions, 3)

	achieved := 0
	for _, typ := range api.notificationTypes(dadID) {
		if typ == "goal_achieved" {
			achieved++
		}
	}
	assert.Equal(t, 1, achieved)
}

func TestReportsRespectFamilyScope(t *testing.T) {
	api := newTestAPI(t)
	api.family()

	for _, user := range []string{momID, kidID} {
		api.decode(api.do(user, http.MethodPost, "/api/transactions", map[string]any{
			"amount": 100, "type": "income", "category": "salary", "date": "2024-01-10",
		}), http.StatusCreated)
		api.decode(api.do(user, http.MethodPost, "/api/transactions", map[string]any{
			"amount": 40, "type": "expense", "category": "food", "date": "2024-02-10",
		}), http.StatusCreated)
	}

	request := map[string]any{"start_date": "2024-01-15", "end_date": "2024-02-20", "period": "monthly"}
	report := api.decode(api.do(momID, http.MethodPost, "/api/reports/generate", request), http.StatusOK)
	overall := report["overall_summary"].(map[string]any)
	assert.Equal(t, 0.0, overall["total_income"])
	assert.Equal(t, 80.0, overall["total_expenses"])
	assert.Len(t, report["user_summaries"], 3)
	assert.Len(t, report["period_summaries"], 2)

	kidReport := api.decode(api.do(kidID, http.MethodPost, "/api/reports/generate", request), http.StatusOK)
	assert.Len(t, kidReport["user_summaries"], 1)

	forbidden := map[string]any{"start_date": "2024-01-01", "end_date": "2024-02-01", "period": "weekly", "user_id": momID}
	api.decode(api.do(kidID, http.MethodPost, "/api/reports/generate", forbidden), http.StatusForbidden)

	invalid := map[string]any{"start_date": "2024-01-01", "end_date": "2024-02-01", "period": "hourly"}
	api.decode(api.do(momID, http.MethodPost, "/api/reports/generate", invalid), http.StatusBadRequest)

	top := api.decodeList(api.do(momID, http.MethodGet, "/api/reports/top-expenses?start_date=2024-01-01&end_date=2024-12-31&limit=1", nil), http.StatusOK)
	assert.Len(t, top, 1)

	categories := api.decode(api.do(momID, http.MethodGet, "/api/reports/categories?start_date=2024-01-01&end_date=2024-12-31", nil), http.StatusOK)
	assert.Equal(t, 80.0, categories["expenses"].(map[string]any)["food"])
	assert.Equal(t, 200.0, categories["income"].(map[string]any)["salary"])

	summary := api.decode(api.do(momID, http.MethodGet, "/api/reports/monthly-summary?year=2024&month=2&user_id="+kidID, nil), http.StatusOK)
	assert.Equal(t, 40.0, summary["summary"].(map[string]any)["total_expenses"])
}

func TestReportExportReturnsWorkbook(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(momID, http.MethodPost, "/api/reports/export", map[string]any{
		"start_date": "2024-01-01", "end_date": "2024-03-31", "period": "monthly",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_monthly_2024-01-01_2024-03-31.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestNotificationsLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.family()

	created := api.decode(api.do(momID, http.MethodPost, "/api/notifications", map[string]any{
		"user_id": kidID, "title": "Chores", "message": "Clean your room",
	}), http.StatusCreated)
	id := created["id"].(string)

	api.decode(api.do(dadID, http.MethodPost, "/api/notifications", map[string]any{
		"user_id": kidID, "title": "Hi", "message": "members cannot notify each other",
	}), http.StatusForbidden)

	api.decode(api.do(momID, http.MethodPut, "/api/notifications/"+id, map[string]any{"is_read": true}), http.StatusNotFound)
	read := api.decode(api.do(kidID, http.MethodPut, "/api/notifications/"+id, map[string]any{"is_read": true}), http.StatusOK)
	assert.Equal(t, true, read["is_read"])

	broadcast := api.decodeList(api.do(momID, http.MethodPost, "/api/notifications/family", map[string]any{
		"title": "Dinner", "message": "at 7",
	}), http.StatusCreated)
	assert.Len(t, broadcast, 3)

	all := api.decode(api.do(kidID, http.MethodPost, "/api/notifications/read-all", nil), http.StatusOK)
	assert.EqualValues(t, 1, all["updated"])

	unread := api.decode(api.do(kidID, http.MethodGet, "/api/notifications?unread_only=true", nil), http.StatusOK)
	assert.EqualValues(t, 0, unread["total"])

	require.Equal(t, http.StatusNoContent, api.do(kidID, http.MethodDelete, "/api/notifications/"+id, nil).Code)
	api.decode(api.do(kidID, http.MethodDelete, "/api/notifications/"+id, nil), http.StatusNotFound)
}
