package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Registers the cgo-free "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"taskboard/internal/realtime"
)

// recordingBus captures broadcast attempts; connected controls whether
// delivery "succeeds".
type recordingBus struct {
	connected bool
	calls     []busCall
}

type busCall struct {
	userID  int64
	event   string
	payload realtime.NotificationPayload
}

func (b *recordingBus) SendToUser(userID int64, event string, payload any) bool {
	p, _ := payload.(realtime.NotificationPayload)
	b.calls = append(b.calls, busCall{userID: userID, event: event, payload: p})
	return b.connected
}

func setupTestService(t *testing.T, bus Broadcaster) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:notif_svc_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Notification{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(NewRepository(db), bus, zerolog.Nop())
}

func TestSendPersistsThenBroadcasts(t *testing.T) {
	bus := &recordingBus{connected: true}
	svc := setupTestService(t, bus)

	n, err := svc.Send(context.Background(), "info", "Task assigned", 42, nil, "")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if n.ID == 0 {
		t.Fatalf("expected persisted id")
	}
	if n.Read {
		t.Fatalf("expected unread notification")
	}

	if len(bus.calls) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(bus.calls))
	}
	call := bus.calls[0]
	if call.event != realtime.EventNotification {
		t.Fatalf("expected %q event, got %q", realtime.EventNotification, call.event)
	}
	if call.userID != 42 {
		t.Fatalf("expected routing to user 42, got %d", call.userID)
	}
	if call.payload.ID != n.ID {
		t.Fatalf("expected broadcast to carry persisted id %d, got %d", n.ID, call.payload.ID)
	}
	if call.payload.Timestamp.IsZero() {
		t.Fatalf("expected broadcast timestamp")
	}
}

func TestSendSurvivesDisconnectedBus(t *testing.T) {
	bus := &recordingBus{connected: false}
	svc := setupTestService(t, bus)
	ctx := context.Background()

	n, err := svc.Send(ctx, "warning", "Overdue", 7, nil, "")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	list, err := svc.List(ctx, 7, 10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != n.ID {
		t.Fatalf("expected persisted row to survive failed broadcast")
	}
}

func TestSendWithNilBus(t *testing.T) {
	svc := setupTestService(t, nil)

	n, err := svc.Send(context.Background(), "info", "hello", 1, nil, "")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if n.ID == 0 {
		t.Fatalf("expected persisted id")
	}
}

func TestSendValidationSkipsBroadcast(t *testing.T) {
	bus := &recordingBus{connected: true}
	svc := setupTestService(t, bus)

	_, err := svc.Send(context.Background(), "info", "", 1, nil, "")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(bus.calls) != 0 {
		t.Fatalf("expected no broadcast after persistence failure, got %d", len(bus.calls))
	}
}

func TestSendCarriesEntityReference(t *testing.T) {
	bus := &recordingBus{connected: true}
	svc := setupTestService(t, bus)

	entityID := int64(101)
	n, err := svc.Send(context.Background(), "info", "New comment", 5, &entityID, "task")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if n.EntityID == nil || *n.EntityID != entityID {
		t.Fatalf("expected entity id %d on row", entityID)
	}
	if n.EntityType != "task" {
		t.Fatalf("expected entity type task, got %q", n.EntityType)
	}

	data := bus.calls[0].payload.Data
	if data == nil {
		t.Fatalf("expected entity reference in broadcast data")
	}
	if got, ok := data["entityId"].(int64); !ok || got != entityID {
		t.Fatalf("expected entityId %d in data, got %v", entityID, data["entityId"])
	}
}

func TestHandleSendNotificationDefaultsToSender(t *testing.T) {
	bus := &recordingBus{connected: true}
	svc := setupTestService(t, bus)
	ctx := context.Background()

	svc.HandleSendNotification(ctx, 33, realtime.NotificationPayload{
		Type:    "info",
		Message: "from the socket",
	})

	list, err := svc.List(ctx, 33, 10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notification for sender, got %d", len(list))
	}
	if len(bus.calls) != 1 || bus.calls[0].userID != 33 {
		t.Fatalf("expected broadcast routed to sender")
	}
}
