package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

// EventType categorizes an audited admin action
type EventType string

const (
	EventRoleChange      EventType = "admin.role_change"
	EventAdminFlagChange EventType = "admin.flag_change"
	EventSessionsRevoked EventType = "admin.sessions_revoked"
)

// Event is one audit trail entry. Detail carries event-specific
// fields such as the old and new role.
type Event struct {
	ID        int64                  `json:"id"`
	EventType EventType              `json:"event_type"`
	ActorID   string                 `json:"actor_id"`
	TargetID  string                 `json:"target_id"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Recorder appends admin actions to the audit_log table. Recording
// never fails the action being audited; insert errors are logged and
// dropped.
type Recorder struct {
	db     *sql.DB
	logger *observability.Logger
	now    func() time.Time
}

// NewRecorder creates an audit recorder
func NewRecorder(db *sql.DB, logger *observability.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger.WithField("component", "audit"),
		now:    time.Now,
	}
}

// Record appends one entry to the trail
func (r *Recorder) Record(ctx context.Context, eventType EventType, actorID, targetID string, detail map[string]interface{}) {
	var detailJSON []byte
	if len(detail) > 0 {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			r.logger.WithError(err).Warn("failed to encode audit detail")
			detailJSON = nil
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, actor_id, target_id, detail)
		VALUES ($1, $2, $3, $4)`,
		string(eventType), actorID, targetID, detailJSON)
	if err != nil {
		r.logger.WithError(err).
			WithField("event_type", string(eventType)).
			Warn("failed to record audit event")
	}
}

// List returns audit entries, newest first
func (r *Recorder) List(ctx context.Context, limit, offset int) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type, actor_id, target_id, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var detail []byte
		if err := rows.Scan(&e.ID, &e.EventType, &e.ActorID, &e.TargetID, &detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				r.logger.WithError(err).Warn("failed to decode audit detail")
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
