package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/contextkeys"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/usage"
)

func newQuotaMiddleware(t *testing.T) (*QuotaMiddleware, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewQuotaMiddleware(usage.NewStore(db, nil), nil, logger), mock
}

func usageRow(pdfCount, monthlyUploads int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"pdf_count", "monthly_uploads"}).
		AddRow(pdfCount, monthlyUploads)
}

func TestEnforceUploadQuotaAllowsUnderLimit(t *testing.T) {
	m, mock := newQuotaMiddleware(t)

	mock.ExpectQuery("SELECT pdf_count, monthly_uploads FROM usage_counters").
		WithArgs("user-1").
		WillReturnRows(usageRow(2, 3))

	called := false
	handler := m.EnforceUploadQuota(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/pdfs", nil)
	ctx := contextkeys.WithIdentity(r.Context(), identity(auth.RoleFreeUser, false))
	handler.ServeHTTP(httptest.NewRecorder(), r.WithContext(ctx))

	assert.True(t, called)
}

func TestEnforceUploadQuotaDeniesAtLimit(t *testing.T) {
	m, mock := newQuotaMiddleware(t)

	mock.ExpectQuery("SELECT pdf_count, monthly_uploads FROM usage_counters").
		WithArgs("user-1").
		WillReturnRows(usageRow(10, 10))

	handler := m.EnforceUploadQuota(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run when quota is exhausted")
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/pdfs", nil)
	ctx := contextkeys.WithIdentity(r.Context(), identity(auth.RoleFreeUser, false))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnforceUploadQuotaAdminUnlimited(t *testing.T) {
	m, mock := newQuotaMiddleware(t)

	mock.ExpectQuery("SELECT pdf_count, monthly_uploads FROM usage_counters").
		WithArgs("user-1").
		WillReturnRows(usageRow(100000, 100000))

	called := false
	handler := m.EnforceUploadQuota(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/pdfs", nil)
	ctx := contextkeys.WithIdentity(r.Context(), identity(auth.RoleAdmin, false))
	handler.ServeHTTP(httptest.NewRecorder(), r.WithContext(ctx))

	assert.True(t, called)
}

func TestEnforceUploadQuotaRequiresIdentity(t *testing.T) {
	m, _ := newQuotaMiddleware(t)

	handler := m.EnforceUploadQuota(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a session")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/pdfs", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
