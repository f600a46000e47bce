package marketing

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func campaignRows(id, name, slug string, active bool, startsAt, endsAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "active", "starts_at", "ends_at",
		"created_by", "created_at", "updated_at",
	}).AddRow(id, name, slug, active, startsAt, endsAt,
		"admin-1", time.Now(), time.Now())
}

func TestCreateLowercasesSlug(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("INSERT INTO marketing_campaigns").
		WithArgs("camp-1", "Summer Launch", "summer-launch", false,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "admin-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	c := &Campaign{
		ID:        "camp-1",
		Name:      "Summer Launch",
		Slug:      "Summer-Launch",
		StartsAt:  time.Now(),
		EndsAt:    time.Now().Add(7 * 24 * time.Hour),
		CreatedBy: "admin-1",
	}
	require.NoError(t, store.Create(context.Background(), c))
	assert.Equal(t, "summer-launch", c.Slug)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT (.+) FROM marketing_campaigns WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "active", "starts_at", "ends_at",
			"created_by", "created_at", "updated_at",
		}))

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveFiltersByWindow(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM marketing_campaigns WHERE active").
		WithArgs(now).
		WillReturnRows(campaignRows("camp-1", "Summer Launch", "summer-launch", true,
			now.Add(-time.Hour), now.Add(time.Hour)))

	campaigns, err := store.ListActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "summer-launch", campaigns[0].Slug)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActive(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("UPDATE marketing_campaigns").
		WithArgs("camp-1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetActive(context.Background(), "camp-1", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActiveNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("UPDATE marketing_campaigns").
		WithArgs("missing", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetActive(context.Background(), "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("DELETE FROM marketing_campaigns").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
