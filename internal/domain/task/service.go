package task

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/domain/notification"
	"taskboard/internal/realtime"
)

// Bus is the broadcast side of the event transport.
type Bus interface {
	BroadcastAll(event string, payload any)
}

type Service struct {
	repo     *Repository
	bus      Bus
	notifier *notification.Service
}

func NewService(repo *Repository, bus Bus, notifier *notification.Service) *Service {
	return &Service{repo: repo, bus: bus, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, creatorID, projectID int64, title, description string, assigneeID *int64) (*Task, error) {
	t := &Task{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		AssigneeID:  assigneeID,
		CreatorID:   creatorID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.publish("created", t)
	if assigneeID != nil && *assigneeID != creatorID {
		s.notify(ctx, *assigneeID, "info", fmt.Sprintf("Task assigned: %s", t.Title), t.ID)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Update applies partial changes. Assignment changes notify the new
// assignee; status changes notify the creator.
func (s *Service) Update(ctx context.Context, actorID, id int64, title, description, status string, assigneeID *int64) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status != "" && status != StatusTodo && status != StatusInProgress && status != StatusDone {
		return nil, ErrInvalidStatus
	}

	statusChanged := status != "" && status != t.Status
	assigneeChanged := assigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *assigneeID)

	if title != "" {
		t.Title = title
	}
	if description != "" {
		t.Description = description
	}
	if status != "" {
		t.Status = status
	}
	if assigneeID != nil {
		t.AssigneeID = assigneeID
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publish("updated", t)
	if assigneeChanged && *assigneeID != actorID {
		s.notify(ctx, *assigneeID, "info", fmt.Sprintf("Task assigned: %s", t.Title), t.ID)
	}
	if statusChanged && t.CreatorID != actorID {
		s.notify(ctx, t.CreatorID, "info", fmt.Sprintf("Task %q moved to %s", t.Title, t.Status), t.ID)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("deleted", t)
	return nil
}

func (s *Service) publish(action string, t *Task) {
	if s.bus == nil {
		return
	}
	s.bus.BroadcastAll(realtime.EventTaskUpdated, realtime.TaskEvent{
		Action:    action,
		Task:      t,
		Timestamp: time.Now(),
	})
}

func (s *Service) notify(ctx context.Context, userID int64, typ, message string, taskID int64) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Send(ctx, typ, message, userID, &taskID, "task")
}
