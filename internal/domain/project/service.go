package project

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

func (s *Service) Create(ctx context.Context, ownerID int64, name, description string) (*Project, error) {
	p := &Project{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publish("created", p)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Project, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, actorID, id int64, name, description string) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actorID {
		return nil, ErrNotOwner
	}

	if name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish("updated", p)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != actorID {
		return ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("deleted", p)
	return nil
}

func (s *Service) AddMember(ctx context.Context, actorID, projectID, userID int64) error {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != actorID {
		return ErrNotOwner
	}

	if err := s.repo.AddMember(ctx, projectID, userID); err != nil {
		return err
	}
	s.publish("memberAdded", p)
	s.notify(ctx, userID, "info", fmt.Sprintf("You were added to project %q", p.Name), p.ID)
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, actorID, projectID, userID int64) error {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != actorID {
		return ErrNotOwner
	}

	if err := s.repo.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	s.publish("memberRemoved", p)
	s.notify(ctx, userID, "warning", fmt.Sprintf("You were removed from project %q", p.Name), p.ID)
	return nil
}

func (s *Service) ListMembers(ctx context.Context, projectID int64) ([]Member, error) {
	return s.repo.ListMembers(ctx, projectID)
}

func (s *Service) publish(action string, p *Project) {
	if s.bus == nil {
		return
	}
	s.bus.BroadcastAll(realtime.EventProjectUpdated, realtime.ProjectEvent{
		Action:    action,
		Project:   p,
		Timestamp: time.Now(),
	})
}

// notify writes a durable notification; delivery failures never fail the
// surrounding mutation.
func (s *Service) notify(ctx context.Context, userID int64, typ, message string, projectID int64) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Send(ctx, typ, message, userID, &projectID, "project")
}
