package group

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fkhayef/chama/internal/notification"
	"github.com/fkhayef/chama/pkg/apperr"
)

// Common errors
var (
	ErrGroupNotFound = apperr.NotFound("group")
)

// Service handles group business logic
type Service struct {
	repo     Repository
	notifier notification.Notifier
}

// NewService creates a new group service
func NewService(repo Repository, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{repo: repo, notifier: notifier}
}

// List retrieves all groups ordered by name
func (s *Service) List(ctx context.Context) ([]*Group, error) {
	return s.repo.List(ctx)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Create validates req and stores a new group
func (s *Service) Create(ctx context.Context, req *GroupRequest) (*Group, error) {
	group, err := s.create(ctx, req)
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityGroup, notification.ActionCreate, 0, err))
		return nil, err
	}

	slog.InfoContext(ctx, "Group created", "group_id", group.ID, "name", group.Name)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityGroup, notification.ActionCreate, group.ID,
		fmt.Sprintf("Group %s created successfully!", group.Name)))
	return group, nil
}

func (s *Service) create(ctx context.Context, req *GroupRequest) (*Group, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

// Update validates req and replaces the group's fields
func (s *Service) Update(ctx context.Context, id int64, req *GroupRequest) (*Group, error) {
	group, err := s.update(ctx, id, req)
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityGroup, notification.ActionUpdate, id, err))
		return nil, err
	}

	slog.InfoContext(ctx, "Group updated", "group_id", group.ID)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityGroup, notification.ActionUpdate, group.ID,
		fmt.Sprintf("Group %s updated successfully!", group.Name)))
	return group, nil
}

func (s *Service) update(ctx context.Context, id int64, req *GroupRequest) (*Group, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}

	group, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Delete removes a group together with its members and contributions
func (s *Service) Delete(ctx context.Context, id int64) error {
	group, err := s.GetByID(ctx, id)
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityGroup, notification.ActionDelete, id, err))
		return err
	}

	slog.InfoContext(ctx, "Group deleted", "group_id", id)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityGroup, notification.ActionDelete, id,
		fmt.Sprintf("Group %s deleted successfully!", group.Name)))
	return nil
}
