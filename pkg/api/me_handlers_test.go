package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/profiles"
	"github.com/BDeshi155/pdf-gpt/pkg/usage"
)

func newMeRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router := mux.NewRouter()
	NewMeHandlers(profiles.NewStore(db), usage.NewStore(db, nil), testLogger()).
		RegisterRoutes(router)
	return router, mock
}

func TestGetProfileRequiresAuth(t *testing.T) {
	router, _ := newMeRouter(t)

	req := httptest.NewRequest("GET", "/api/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfile(t *testing.T) {
	router, mock := newMeRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("admin-1").
		WillReturnRows(profileRows("admin-1", auth.RoleProUser))

	req := httptest.NewRequest("GET", "/api/me", nil)
	req = withIdentity(req, adminIdentity(auth.RoleProUser, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"pro_user"`)
}

func TestGetStats(t *testing.T) {
	router, mock := newMeRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("admin-1").
		WillReturnRows(profileRows("admin-1", auth.RoleFreeUser))
	expectSnapshot(mock, "admin-1", 4, 9)

	req := httptest.NewRequest("GET", "/api/me/stats", nil)
	req = withIdentity(req, adminIdentity(auth.RoleFreeUser, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"pdf_count":4`)
	assert.Contains(t, body, `"pdfs_remaining":6`)
	assert.Contains(t, body, `"uploads_remaining":1`)
	assert.Contains(t, body, `"features"`)
}

func TestGetFeaturesNearLimit(t *testing.T) {
	router, mock := newMeRouter(t)

	expectSnapshot(mock, "admin-1", 9, 2)

	req := httptest.NewRequest("GET", "/api/me/features", nil)
	req = withIdentity(req, adminIdentity(auth.RoleFreeUser, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"near_limit":true`)
}
