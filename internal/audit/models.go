package audit

import "time"

// Event is an immutable, append-only record of a session or authorization
// event.
//
// Invariants:
// - Events are never updated or deleted.
// - Raw credentials are never stored; only the identity they carried.
// - Recording is best-effort; no auth flow blocks on an audit failure.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorEmail  string `json:"actor_email,omitempty" db:"actor_email"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Workspace is set for authorization denials on workspace routes.
	Workspace string `json:"workspace,omitempty" db:"workspace"`

	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Outcome is the short failure label (e.g. expired, deny_role).
	Outcome string `json:"outcome,omitempty" db:"outcome"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLoginSucceeded EventType = "login_succeeded"
	EventTypeLoginFailed    EventType = "login_failed"
	EventTypeLogout         EventType = "logout"
	EventTypeRefreshed      EventType = "session_refreshed"
	EventTypeRefreshFailed  EventType = "refresh_failed"
	EventTypeAccessDenied   EventType = "access_denied"
)
