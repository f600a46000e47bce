package billing

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

type fakeRoleUpdater struct {
	role    auth.Role
	updated []auth.Role
}

func (f *fakeRoleUpdater) GetProfile(ctx context.Context, id string) (*auth.User, error) {
	return &auth.User{ID: id, Role: f.role}, nil
}

func (f *fakeRoleUpdater) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	f.updated = append(f.updated, role)
	f.role = role
	return nil
}

func newTestService(t *testing.T, currentRole auth.Role) (*Service, sqlmock.Sqlmock, *fakeRoleUpdater) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	profiles := &fakeRoleUpdater{role: currentRole}
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewService(db, profiles, logger), mock, profiles
}

func subscriptionRows(userID string, plan Plan, status SubscriptionStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"user_id", "plan", "status", "external_ref", "current_period_end",
		"created_at", "updated_at",
	}).AddRow(userID, string(plan), string(status), "sub_123",
		time.Now().Add(30*24*time.Hour), time.Now(), time.Now())
}

func TestGetDefaultsToFreePlan(t *testing.T) {
	svc, mock, _ := newTestService(t, auth.RoleFreeUser)

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "plan", "status", "external_ref", "current_period_end",
			"created_at", "updated_at",
		}))

	sub, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, sub.Plan)
	assert.Equal(t, SubscriptionStatusNone, sub.Status)
}

func TestSubscribeUpgradesFreeUser(t *testing.T) {
	svc, mock, profiles := newTestService(t, auth.RoleFreeUser)

	mock.ExpectExec("INSERT INTO subscriptions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows("user-1", PlanProMonth, SubscriptionStatusActive))

	sub, err := svc.Subscribe(context.Background(), "user-1", PlanProMonth, "sub_123")
	require.NoError(t, err)
	assert.Equal(t, PlanProMonth, sub.Plan)
	assert.Equal(t, []auth.Role{auth.RoleProUser}, profiles.updated)
}

func TestSubscribeDoesNotTouchAdminRole(t *testing.T) {
	svc, mock, profiles := newTestService(t, auth.RoleAdmin)

	mock.ExpectExec("INSERT INTO subscriptions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(subscriptionRows("user-1", PlanProAnnual, SubscriptionStatusActive))

	_, err := svc.Subscribe(context.Background(), "user-1", PlanProAnnual, "sub_123")
	require.NoError(t, err)
	assert.Empty(t, profiles.updated)
}

func TestSubscribeRejectsUnknownPlan(t *testing.T) {
	svc, _, _ := newTestService(t, auth.RoleFreeUser)

	_, err := svc.Subscribe(context.Background(), "user-1", Plan("enterprise"), "")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = svc.Subscribe(context.Background(), "user-1", PlanFree, "")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCancelDowngradesProUser(t *testing.T) {
	svc, mock, profiles := newTestService(t, auth.RoleProUser)

	mock.ExpectExec("UPDATE subscriptions SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Cancel(context.Background(), "user-1"))
	assert.Equal(t, []auth.Role{auth.RoleFreeUser}, profiles.updated)
}

func TestCancelKeepsAdminRole(t *testing.T) {
	svc, mock, profiles := newTestService(t, auth.RoleAdmin)

	mock.ExpectExec("UPDATE subscriptions SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Cancel(context.Background(), "user-1"))
	assert.Empty(t, profiles.updated)
}

func TestCancelWithoutSubscription(t *testing.T) {
	svc, mock, _ := newTestService(t, auth.RoleProUser)

	mock.ExpectExec("UPDATE subscriptions SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Cancel(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNoSubscription)
}

func TestHandleWebhook(t *testing.T) {
	svc, mock, profiles := newTestService(t, auth.RoleFreeUser)

	mock.ExpectExec("INSERT INTO subscriptions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WillReturnRows(subscriptionRows("user-1", PlanProMonth, SubscriptionStatusActive))

	err := svc.HandleWebhook(context.Background(), WebhookEvent{
		Type:   "subscription.created",
		UserID: "user-1",
		Plan:   PlanProMonth,
		Ref:    "sub_123",
	})
	require.NoError(t, err)
	assert.Equal(t, []auth.Role{auth.RoleProUser}, profiles.updated)

	// Unknown events are ignored
	assert.NoError(t, svc.HandleWebhook(context.Background(), WebhookEvent{Type: "invoice.finalized"}))
}
