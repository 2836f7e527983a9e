package notification

import (
	"context"

	"github.com/rs/zerolog"

	"taskboard/internal/realtime"
)

// Broadcaster is the transport side of dispatch. Implemented by
// realtime.Hub; a nil Broadcaster means broadcast is skipped entirely.
type Broadcaster interface {
	SendToUser(userID int64, event string, payload any) bool
}

// Service is the single write path for notifications: persist first, then
// attempt a best-effort real-time broadcast. A failed broadcast is never
// an error; the row is already durable and the next fetch catches up.
type Service struct {
	repo *Repository
	bus  Broadcaster
	log  zerolog.Logger
}

func NewService(repo *Repository, bus Broadcaster, log zerolog.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Send persists a notification and pushes it to the owning user's live
// connections. Persistence failures propagate and suppress the broadcast.
func (s *Service) Send(ctx context.Context, typ, message string, userID int64, entityID *int64, entityType string) (*Notification, error) {
	n := &Notification{
		UserID:     userID,
		Type:       typ,
		Message:    message,
		EntityID:   entityID,
		EntityType: entityType,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	payload := realtime.NotificationPayload{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		UserID:    n.UserID,
		Timestamp: n.CreatedAt,
	}
	if entityID != nil {
		payload.Data = map[string]any{"entityId": *entityID, "entityType": entityType}
	}

	if s.bus == nil || !s.bus.SendToUser(userID, realtime.EventNotification, payload) {
		s.log.Warn().
			Int64("user_id", userID).
			Int64("notification_id", n.ID).
			Msg("broadcast skipped: no live connection")
	}

	return n, nil
}

// HandleSendNotification accepts sendNotification frames arriving over
// the socket and routes them through the same persist-then-broadcast path.
func (s *Service) HandleSendNotification(ctx context.Context, senderID int64, p realtime.NotificationPayload) {
	userID := p.UserID
	if userID == 0 {
		userID = senderID
	}

	var entityID *int64
	var entityType string
	if p.Data != nil {
		if v, ok := p.Data["entityId"].(float64); ok {
			id := int64(v)
			entityID = &id
		}
		if v, ok := p.Data["entityType"].(string); ok {
			entityType = v
		}
	}

	if _, err := s.Send(ctx, p.Type, p.Message, userID, entityID, entityType); err != nil {
		s.log.Warn().Err(err).Int64("sender_id", senderID).Msg("sendNotification rejected")
	}
}

// Read-side passthroughs so callers never need the repository directly.

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *Service) ListUnread(ctx context.Context, userID int64) ([]Notification, error) {
	return s.repo.ListUnreadByUser(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) (*Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *Service) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

func (s *Service) Count(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountByUser(ctx, userID)
}
