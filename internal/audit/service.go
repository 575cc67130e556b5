package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It MUST be append-only; no Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records session and authorization events for internal review.
// Callers treat every method as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) LogLogin(ctx context.Context, userID, email, role, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeLoginSucceeded, ActorUserID: userID, ActorEmail: email, ActorRole: role, IPAddress: ip})
}

// LogLoginFailed records a rejected login. email is what the client sent.
func (s *Service) LogLoginFailed(ctx context.Context, email, ip, outcome string) error {
	return s.Append(ctx, Event{Type: EventTypeLoginFailed, ActorEmail: email, IPAddress: ip, Outcome: outcome})
}

func (s *Service) LogLogout(ctx context.Context, userID, email, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeLogout, ActorUserID: userID, ActorEmail: email, IPAddress: ip})
}

func (s *Service) LogRefresh(ctx context.Context, userID, role, ip, outcome string) error {
	t := EventTypeRefreshed
	if outcome != "" && outcome != "ok" {
		t = EventTypeRefreshFailed
	}
	return s.Append(ctx, Event{Type: t, ActorUserID: userID, ActorRole: role, IPAddress: ip, Outcome: outcome})
}

// LogAccessDenied implements rbac.DenialRecorder.
func (s *Service) LogAccessDenied(ctx context.Context, actorUserID, actorRole, workspace, ip, outcome string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeAccessDenied,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		Workspace:   workspace,
		IPAddress:   ip,
		Outcome:     outcome,
	})
}
