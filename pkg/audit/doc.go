// Package audit keeps a trail of privileged admin actions.
//
// # Overview
//
// Role changes, admin flag changes and forced session revocations are
// appended to the audit_log table with the acting and target user.
// Recording is best-effort: a failed insert is logged and never fails
// the action itself. The trail is readable through the super-admin
// API.
package audit
