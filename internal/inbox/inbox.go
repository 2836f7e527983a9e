package inbox

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskboard/internal/domain/notification"
	"taskboard/internal/realtime"
)

const (
	// Toasts auto-dismiss after this delay.
	DefaultToastTTL = 5 * time.Second
	// The transient toast queue never grows past this.
	MaxToasts = 10
)

// Fetcher is the REST side of the inbox. Implemented by APIClient.
type Fetcher interface {
	List(ctx context.Context, limit int) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Toast is one transient, auto-dismissing entry.
type Toast struct {
	NotificationID int64  `json:"notificationId"`
	Type           string `json:"type"`
	Message        string `json:"message"`
}

// Inbox is the single source of truth for what notifications exist on the
// client, how many are unread, and what toasts are showing. It reconciles
// server-fetched history with real-time pushes, de-duplicating by id.
type Inbox struct {
	log      zerolog.Logger
	api      Fetcher
	userID   int64
	toastTTL time.Duration

	mu      sync.Mutex
	items   []notification.Notification
	unread  int
	toasts  []Toast
	handler realtime.Handler
}

func New(api Fetcher, userID int64, log zerolog.Logger) *Inbox {
	return &Inbox{
		log:      log,
		api:      api,
		userID:   userID,
		toastTTL: DefaultToastTTL,
	}
}

// SetToastTTL overrides the auto-dismiss delay.
func (i *Inbox) SetToastTTL(d time.Duration) {
	i.mu.Lock()
	i.toastTTL = d
	i.mu.Unlock()
}

// Attach subscribes the inbox to notification pushes on the client.
func (i *Inbox) Attach(c *realtime.Client) {
	i.handler = func(env realtime.Envelope) {
		var p realtime.NotificationPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			i.log.Warn().Err(err).Msg("bad notification payload")
			return
		}
		i.HandlePush(p)
	}
	c.On(realtime.EventNotification, i.handler)
}

// Detach removes the subscription added by Attach.
func (i *Inbox) Detach(c *realtime.Client) {
	if i.handler != nil {
		c.Off(realtime.EventNotification, i.handler)
		i.handler = nil
	}
}

// Load fetches persisted history and merges it with anything already
// pushed, keeping in-memory items the fetch did not return.
func (i *Inbox) Load(ctx context.Context, limit int) error {
	fetched, err := i.api.List(ctx, limit)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	seen := make(map[int64]bool, len(fetched))
	for _, n := range fetched {
		seen[n.ID] = true
	}

	merged := make([]notification.Notification, 0, len(fetched)+len(i.items))
	for _, n := range i.items {
		if !seen[n.ID] {
			merged = append(merged, n)
		}
	}
	merged = append(merged, fetched...)

	i.items = merged
	i.recountUnread()
	return nil
}

// HandlePush folds one real-time notification event into local state.
// Events for other users are ignored; duplicates by id are dropped.
func (i *Inbox) HandlePush(p realtime.NotificationPayload) {
	if p.UserID != i.userID {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, n := range i.items {
		if n.ID == p.ID && p.ID != 0 {
			return
		}
	}

	i.items = append([]notification.Notification{{
		ID:        p.ID,
		UserID:    p.UserID,
		Type:      p.Type,
		Message:   p.Message,
		CreatedAt: p.Timestamp,
	}}, i.items...)
	i.unread++

	// Only info-level events surface as transient toasts.
	if p.Type == "info" {
		i.pushToast(Toast{NotificationID: p.ID, Type: p.Type, Message: p.Message})
	}
}

// pushToast enqueues a toast and schedules its self-removal. Caller holds
// the lock.
func (i *Inbox) pushToast(t Toast) {
	i.toasts = append(i.toasts, t)
	if len(i.toasts) > MaxToasts {
		i.toasts = i.toasts[len(i.toasts)-MaxToasts:]
	}

	id := t.NotificationID
	time.AfterFunc(i.toastTTL, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		for idx, existing := range i.toasts {
			if existing.NotificationID == id {
				i.toasts = append(i.toasts[:idx], i.toasts[idx+1:]...)
				return
			}
		}
	})
}

// MarkRead flips the local flag optimistically, then syncs. A failed sync
// is logged and left for the next fetch to reconcile.
func (i *Inbox) MarkRead(ctx context.Context, id int64) {
	i.mu.Lock()
	for idx := range i.items {
		if i.items[idx].ID == id && !i.items[idx].Read {
			i.items[idx].Read = true
			i.unread--
		}
	}
	i.mu.Unlock()

	if err := i.api.MarkRead(ctx, id); err != nil {
		i.log.Warn().Err(err).Int64("notification_id", id).Msg("mark-read sync failed")
	}
}

// Delete removes the item optimistically, then syncs.
func (i *Inbox) Delete(ctx context.Context, id int64) {
	i.mu.Lock()
	for idx := range i.items {
		if i.items[idx].ID == id {
			if !i.items[idx].Read {
				i.unread--
			}
			i.items = append(i.items[:idx], i.items[idx+1:]...)
			break
		}
	}
	i.mu.Unlock()

	if err := i.api.Delete(ctx, id); err != nil {
		i.log.Warn().Err(err).Int64("notification_id", id).Msg("delete sync failed")
	}
}

// Items returns a copy of the current list, newest first.
func (i *Inbox) Items() []notification.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]notification.Notification, len(i.items))
	copy(out, i.items)
	return out
}

// Unread returns the current unread count.
func (i *Inbox) Unread() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.unread
}

// Toasts returns the currently visible toast queue.
func (i *Inbox) Toasts() []Toast {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Toast, len(i.toasts))
	copy(out, i.toasts)
	return out
}

// recountUnread recomputes the badge from the list. Caller holds the lock.
func (i *Inbox) recountUnread() {
	count := 0
	for _, n := range i.items {
		if !n.Read {
			count++
		}
	}
	i.unread = count
}
