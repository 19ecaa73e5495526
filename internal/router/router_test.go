package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medtrack/internal/auth"
	"medtrack/internal/cache"
	"medtrack/internal/config"
	"medtrack/internal/db"
	"medtrack/internal/handler"
	"medtrack/internal/metrics"
	"medtrack/internal/repository"
	"medtrack/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	gormDB, err := db.NewSQLite(db.MemoryDSN, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gormDB))

	cfg := &config.Config{}
	jwtService := auth.NewJWTService("test-secret", time.Hour, time.Hour)
	guard := auth.NewLoginGuard(cache.New("", "", 0), 10, time.Minute)

	userRepo := repository.NewUserRepository(gormDB)
	drugRepo := repository.NewDrugRepository(gormDB)
	consumptionRepo := repository.NewConsumptionRepository(gormDB)
	procedureRepo := repository.NewProcedureRepository(gormDB)
	recordRepo := repository.NewProcedureRecordRepository(gormDB)

	drugService := service.NewDrugService(drugRepo, consumptionRepo, repository.NewDrugScheduleRepository(gormDB))
	procedureService := service.NewProcedureService(procedureRepo, recordRepo, repository.NewProcedureScheduleRepository(gormDB))
	summaryService := service.NewSummaryService(consumptionRepo, recordRepo)
	adminService := service.NewAdminService(userRepo, jwtService, guard, service.AdminCredentials{
		Username: "admin",
		Password: "admin-pass",
	})

	e := echo.New()
	Register(e, cfg, zap.NewNop(), metrics.New(), jwtService, Handlers{
		Auth:      handler.NewAuthHandler(service.NewAuthService(userRepo, jwtService, guard)),
		Admin:     handler.NewAdminHandler(adminService),
		Drug:      handler.NewDrugHandler(drugService, summaryService),
		Procedure: handler.NewProcedureHandler(procedureService),
	})
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSON ||
		rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSONCharsetUTF8 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func register(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()
	rec, out := call(t, e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return out["token"].(string)
}

func TestHealthAndRoot(t *testing.T) {
	e := newTestServer(t)

	rec, out := call(t, e, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", out["status"])
	assert.Equal(t, "API is running", out["message"])

	rec, out = call(t, e, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Not available", out["frontend"])
	assert.Equal(t, "/api/health", out["health"])
}

func TestUnknownAPIRoute(t *testing.T) {
	e := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rec, out := call(t, e, method, "/api/does-not-exist", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "API endpoint not found", out["error"])
	}
}

func TestRegistrationAndLogin(t *testing.T) {
	e := newTestServer(t)
	register(t, e, "alice")

	rec, out := call(t, e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username or email already exists", out["error"])

	rec, out = call(t, e, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username, email, and password are required", out["error"])

	rec, out = call(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", out["message"])
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	rec, out = call(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", out["error"])
}

func TestProfileRequiresToken(t *testing.T) {
	e := newTestServer(t)

	rec, out := call(t, e, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", out["error"])

	rec, out = call(t, e, http.MethodGet, "/api/auth/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", out["error"])

	token := register(t, e, "carol")
	rec, out = call(t, e, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "carol@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
}

func TestTodaySummary(t *testing.T) {
	e := newTestServer(t)
	token := register(t, e, "alice")

	rec, out := call(t, e, http.MethodPost, "/api/drugs", token, map[string]interface{}{
		"name": "Aspirin", "unit_type": "pills", "default_dosage": "",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	drugID := out["drug"].(map[string]interface{})["id"]

	today := time.Now().Format("2006-01-02")
	rec, _ = call(t, e, http.MethodPost, "/api/drugs/consumptions", token, map[string]interface{}{
		"drug_id":          fmt.Sprint(drugID),
		"consumption_date": today,
		"quantity":         2,
		"unit_type":        "pills",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, out = call(t, e, http.MethodGet, "/api/drugs/summary/today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, today, out["date"])
	consumptions := out["consumptions"].([]interface{})
	require.Len(t, consumptions, 1)
	assert.Equal(t, "Aspirin", consumptions[0].(map[string]interface{})["drug_name"])
	assert.Empty(t, out["procedures"])
}

func TestRecordConsumptionValidation(t *testing.T) {
	e := newTestServer(t)
	token := register(t, e, "alice")

	rec, out := call(t, e, http.MethodPost, "/api/drugs/consumptions", token, map[string]interface{}{
		"drug_id": 1, "consumption_date": "2024-01-15", "unit_type": "pills",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "drug_id, consumption_date, quantity, and unit_type are required", out["error"])

	rec, out = call(t, e, http.MethodPost, "/api/drugs/consumptions", token, map[string]interface{}{
		"drug_id": 1, "consumption_date": "15/01/2024", "quantity": 1, "unit_type": "pills",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "consumption_date must be a YYYY-MM-DD date", out["error"])

	rec, out = call(t, e, http.MethodPost, "/api/drugs/consumptions", token, map[string]interface{}{
		"drug_id": 999, "consumption_date": "2024-01-15", "quantity": 1, "unit_type": "pills",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Drug not found", out["error"])
}

func TestOwnershipIsolation(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "alice")
	bob := register(t, e, "bob")

	rec, out := call(t, e, http.MethodPost, "/api/procedures", alice, map[string]string{"name": "Physio"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := out["procedure"].(map[string]interface{})["id"]
	path := fmt.Sprintf("/api/procedures/%v", id)

	rec, out = call(t, e, http.MethodPut, path, bob, map[string]string{"name": "Mine now"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Procedure not found", out["error"])

	rec, _ = call(t, e, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = call(t, e, http.MethodGet, "/api/procedures", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, out["procedures"])

	rec, out = call(t, e, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Procedure deleted successfully", out["message"])
}

func TestScheduleUpsertKeysOnBody(t *testing.T) {
	e := newTestServer(t)
	token := register(t, e, "alice")

	_, out := call(t, e, http.MethodPost, "/api/drugs", token, map[string]string{"name": "Ibuprofen", "unit_type": "mg"})
	drugID := out["drug"].(map[string]interface{})["id"]

	rec, out := call(t, e, http.MethodPost, "/api/drugs/schedules", token, map[string]interface{}{
		"drug_id": drugID, "schedule_type": "interval", "interval_hours": 8, "times_per_day": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	schedule := out["schedule"].(map[string]interface{})
	assert.Nil(t, schedule["times_per_day"])

	rec, out = call(t, e, http.MethodPut, "/api/drugs/schedules/12345", token, map[string]interface{}{
		"drug_id": drugID, "schedule_type": "per_day", "times_per_day": "2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, schedule["id"], out["schedule"].(map[string]interface{})["id"])

	rec, out = call(t, e, http.MethodGet, "/api/drugs/schedules", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	schedules := out["schedules"].([]interface{})
	require.Len(t, schedules, 1)
	assert.Equal(t, "per_day", schedules[0].(map[string]interface{})["schedule_type"])
	assert.Equal(t, "Ibuprofen", schedules[0].(map[string]interface{})["drug_name"])

	rec, out = call(t, e, http.MethodPost, "/api/drugs/schedules", token, map[string]interface{}{
		"drug_id": drugID, "schedule_type": "interval",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "interval_hours must be a positive number for interval schedules", out["error"])
}

func TestExport(t *testing.T) {
	e := newTestServer(t)
	token := register(t, e, "alice")

	rec, out := call(t, e, http.MethodGet, "/api/procedures/export?start_date=2024-01-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "start_date and end_date are required", out["error"])

	rec, out = call(t, e, http.MethodGet, "/api/procedures/export?start_date=2024-02-01&end_date=2024-01-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "start_date must be on or before end_date", out["error"])

	rec, _ = call(t, e, http.MethodGet, "/api/procedures/export?start_date=2024-01-01&end_date=2024-01-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=\"procedure_records_2024-01-01_to_2024-01-31.xlsx\"",
		rec.Header().Get(echo.HeaderContentDisposition))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestAdminRoutes(t *testing.T) {
	e := newTestServer(t)
	userToken := register(t, e, "alice")

	rec, out := call(t, e, http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username and password are required", out["error"])

	rec, out = call(t, e, http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid admin credentials", out["error"])

	rec, out = call(t, e, http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	adminToken := out["token"].(string)

	rec, out = call(t, e, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Admin access token required", out["error"])

	rec, out = call(t, e, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid or unauthorized admin token", out["error"])

	rec, out = call(t, e, http.MethodGet, "/api/drugs", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", out["error"])

	rec, out = call(t, e, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := out["users"].([]interface{})
	require.Len(t, users, 1)
	alice := users[0].(map[string]interface{})
	assert.NotContains(t, alice, "password_hash")

	resetPath := fmt.Sprintf("/api/admin/users/%v/password", alice["id"])
	rec, out = call(t, e, http.MethodPut, resetPath, adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "new_password is required to reset password", out["error"])

	rec, _ = call(t, e, http.MethodPut, resetPath, adminToken, map[string]string{"new_password": "fresh-pass"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "fresh-pass"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, out = call(t, e, http.MethodPut, "/api/admin/users/999/password", adminToken, map[string]string{"new_password": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", out["error"])
}

func TestProcedureTypes(t *testing.T) {
	e := newTestServer(t)
	token := register(t, e, "alice")

	rec, out := call(t, e, http.MethodGet, "/api/procedure-types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, out["types"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestServer(t)
	call(t, e, http.MethodGet, "/api/health", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `medtrack_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}
