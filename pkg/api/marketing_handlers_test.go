package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/marketing"
)

func newMarketingRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := marketing.NewService(marketing.NewStore(db))
	router := mux.NewRouter()
	NewMarketingHandlers(svc, testLogger()).RegisterRoutes(router)
	return router, mock
}

func TestCreateCampaignRequiresAdmin(t *testing.T) {
	router, _ := newMarketingRouter(t)

	body := bytes.NewBufferString(fmt.Sprintf(
		`{"name":"Summer Launch","slug":"summer-launch","starts_at":%q,"ends_at":%q}`,
		time.Now().Format(time.RFC3339),
		time.Now().Add(7*24*time.Hour).Format(time.RFC3339)))
	req := httptest.NewRequest("POST", "/admin/marketing", body)
	req.Header.Set("Content-Type", "application/json")
	req = withIdentity(req, adminIdentity(auth.RoleProUser, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateCampaignAsAdmin(t *testing.T) {
	router, mock := newMarketingRouter(t)

	mock.ExpectQuery("INSERT INTO marketing_campaigns").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	body := bytes.NewBufferString(fmt.Sprintf(
		`{"name":"Summer Launch","slug":"Summer-Launch","starts_at":%q,"ends_at":%q}`,
		time.Now().Format(time.RFC3339),
		time.Now().Add(7*24*time.Hour).Format(time.RFC3339)))
	req := httptest.NewRequest("POST", "/admin/marketing", body)
	req.Header.Set("Content-Type", "application/json")
	req = withIdentity(req, adminIdentity(auth.RoleAdmin, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"summer-launch"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleCampaign(t *testing.T) {
	router, mock := newMarketingRouter(t)

	mock.ExpectExec("UPDATE marketing_campaigns").
		WithArgs("camp-1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest("PUT", "/admin/marketing/camp-1/active",
		bytes.NewBufferString(`{"active":true}`))
	req.Header.Set("Content-Type", "application/json")
	req = withIdentity(req, adminIdentity(auth.RoleSuperAdmin, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleUnknownCampaign(t *testing.T) {
	router, mock := newMarketingRouter(t)

	mock.ExpectExec("UPDATE marketing_campaigns").
		WithArgs("missing", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest("PUT", "/admin/marketing/missing/active",
		bytes.NewBufferString(`{"active":false}`))
	req.Header.Set("Content-Type", "application/json")
	req = withIdentity(req, adminIdentity(auth.RoleAdmin, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActiveCampaignsWithoutSession(t *testing.T) {
	router, mock := newMarketingRouter(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM marketing_campaigns WHERE active").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "active", "starts_at", "ends_at",
			"created_by", "created_at", "updated_at",
		}).AddRow("camp-1", "Summer Launch", "summer-launch", true,
			now.Add(-time.Hour), now.Add(time.Hour), "admin-1", now, now))

	req := httptest.NewRequest("GET", "/api/campaigns", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summer-launch")
}
