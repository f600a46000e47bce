package shop

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/storage"
)

var itemContent = []byte("%PDF-1.7\nshop sample")

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, storage.BlobStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := storage.NewBlobStore(storage.Config{
		Type:           "filesystem",
		FilesystemRoot: t.TempDir(),
	})
	require.NoError(t, err)

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewService(NewStore(db), blobs, logger), mock, blobs
}

func userWithRole(role auth.Role) *auth.User {
	return &auth.User{ID: "caller-1", Role: role}
}

func itemRows(id, blobKey string, priceCents int, published bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "blob_key", "price_cents",
		"uploaded_by", "published", "created_at", "updated_at",
	}).AddRow(id, "Guide", "A guide", blobKey, priceCents,
		"admin-1", published, time.Now(), time.Now())
}

func TestUploadRequiresShopPermission(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), userWithRole(auth.RoleProUser),
		"Guide", "", 0, itemContent)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Upload(context.Background(), userWithRole(auth.RoleFreeUser),
		"Guide", "", 0, itemContent)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUploadAsAdmin(t *testing.T) {
	svc, mock, blobs := newTestService(t)

	mock.ExpectQuery("INSERT INTO shop_pdfs").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	item, err := svc.Upload(context.Background(), userWithRole(auth.RoleAdmin),
		"Guide", "A guide", 499, itemContent)
	require.NoError(t, err)
	assert.False(t, item.Published)
	assert.Equal(t, 499, item.PriceCents)

	exists, err := blobs.Exists(context.Background(), item.BlobKey)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDownloadFreeItem(t *testing.T) {
	svc, mock, blobs := newTestService(t)

	key := BlobKey("item-1")
	require.NoError(t, blobs.Put(context.Background(), key,
		bytes.NewReader(itemContent), "application/pdf"))

	mock.ExpectQuery("SELECT (.+) FROM shop_pdfs WHERE id").
		WithArgs("item-1").
		WillReturnRows(itemRows("item-1", key, 0, true))

	_, content, err := svc.Download(context.Background(), userWithRole(auth.RoleFreeUser), "item-1")
	require.NoError(t, err)
	defer content.Close()

	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, itemContent, data)
}

func TestDownloadPremiumItemRequiresPro(t *testing.T) {
	svc, mock, _ := newTestService(t)

	key := BlobKey("item-1")
	mock.ExpectQuery("SELECT (.+) FROM shop_pdfs WHERE id").
		WithArgs("item-1").
		WillReturnRows(itemRows("item-1", key, 999, true))

	_, _, err := svc.Download(context.Background(), userWithRole(auth.RoleFreeUser), "item-1")
	assert.ErrorIs(t, err, ErrProRequired)
}

func TestDownloadPremiumItemAsPro(t *testing.T) {
	svc, mock, blobs := newTestService(t)

	key := BlobKey("item-1")
	require.NoError(t, blobs.Put(context.Background(), key,
		bytes.NewReader(itemContent), "application/pdf"))

	mock.ExpectQuery("SELECT (.+) FROM shop_pdfs WHERE id").
		WithArgs("item-1").
		WillReturnRows(itemRows("item-1", key, 999, true))

	_, content, err := svc.Download(context.Background(), userWithRole(auth.RoleProUser), "item-1")
	require.NoError(t, err)
	content.Close()
}

func TestDownloadPremiumItemAsAdmin(t *testing.T) {
	svc, mock, blobs := newTestService(t)

	key := BlobKey("item-1")
	require.NoError(t, blobs.Put(context.Background(), key,
		bytes.NewReader(itemContent), "application/pdf"))

	// Admin roles carry pro-level entitlements implicitly
	mock.ExpectQuery("SELECT (.+) FROM shop_pdfs WHERE id").
		WithArgs("item-1").
		WillReturnRows(itemRows("item-1", key, 999, true))

	_, content, err := svc.Download(context.Background(), userWithRole(auth.RoleAdmin), "item-1")
	require.NoError(t, err)
	content.Close()
}

func TestUnpublishedItemHiddenFromNonManagers(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM shop_pdfs WHERE id").
		WithArgs("draft-1").
		WillReturnRows(itemRows("draft-1", BlobKey("draft-1"), 0, false))

	_, err := svc.Get(context.Background(), userWithRole(auth.RoleProUser), "draft-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnpublishedItemVisibleToSuperAdmin(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM shop_pdfs WHERE id").
		WithArgs("draft-1").
		WillReturnRows(itemRows("draft-1", BlobKey("draft-1"), 0, false))

	item, err := svc.Get(context.Background(), userWithRole(auth.RoleSuperAdmin), "draft-1")
	require.NoError(t, err)
	assert.Equal(t, "draft-1", item.ID)
}

func TestPublishRequiresManagementPermission(t *testing.T) {
	svc, mock, _ := newTestService(t)

	// The admin role can upload to the shop but not manage it
	err := svc.SetPublished(context.Background(), userWithRole(auth.RoleAdmin), "item-1", true)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	mock.ExpectExec("UPDATE shop_pdfs SET published").
		WithArgs("item-1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = svc.SetPublished(context.Background(), userWithRole(auth.RoleSuperAdmin), "item-1", true)
	assert.NoError(t, err)
}
