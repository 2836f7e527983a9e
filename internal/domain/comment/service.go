package comment

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/domain/notification"
	"taskboard/internal/domain/task"
	"taskboard/internal/realtime"
)

// Bus is the broadcast side of the event transport.
type Bus interface {
	BroadcastAll(event string, payload any)
}

type Service struct {
	repo     *Repository
	tasks    *task.Repository
	bus      Bus
	notifier *notification.Service
}

func NewService(repo *Repository, tasks *task.Repository, bus Bus, notifier *notification.Service) *Service {
	return &Service{repo: repo, tasks: tasks, bus: bus, notifier: notifier}
}

// Create stores a comment, broadcasts it, and notifies the task's creator
// and assignee (excluding the author).
func (s *Service) Create(ctx context.Context, authorID, taskID int64, body string) (*Comment, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	cm := &Comment{
		TaskID:   taskID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.repo.Create(ctx, cm); err != nil {
		return nil, err
	}

	s.publish("created", cm)

	message := fmt.Sprintf("New comment on task %q", t.Title)
	if t.CreatorID != authorID {
		s.notify(ctx, t.CreatorID, message, cm.ID)
	}
	if t.AssigneeID != nil && *t.AssigneeID != authorID && *t.AssigneeID != t.CreatorID {
		s.notify(ctx, *t.AssigneeID, message, cm.ID)
	}
	return cm, nil
}

func (s *Service) ListByTask(ctx context.Context, taskID int64) ([]Comment, error) {
	return s.repo.ListByTask(ctx, taskID)
}

func (s *Service) Update(ctx context.Context, actorID, id int64, body string) (*Comment, error) {
	cm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cm.AuthorID != actorID {
		return nil, ErrNotAuthor
	}

	cm.Body = body
	if err := s.repo.Update(ctx, cm); err != nil {
		return nil, err
	}
	s.publish("updated", cm)
	return cm, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	cm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cm.AuthorID != actorID {
		return ErrNotAuthor
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("deleted", cm)
	return nil
}

func (s *Service) publish(action string, cm *Comment) {
	if s.bus == nil {
		return
	}
	s.bus.BroadcastAll(realtime.EventCommentAdded, realtime.CommentEvent{
		Action:    action,
		Comment:   cm,
		Timestamp: time.Now(),
	})
}

func (s *Service) notify(ctx context.Context, userID int64, message string, commentID int64) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Send(ctx, "info", message, userID, &commentID, "comment")
}
