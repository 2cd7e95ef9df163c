package contribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fkhayef/chama/internal/group"
	"github.com/fkhayef/chama/internal/member"
	"github.com/fkhayef/chama/internal/notification"
	"github.com/fkhayef/chama/pkg/apperr"
)

// Common errors
var (
	ErrContributionNotFound     = apperr.NotFound("contribution")
	ErrReferencedMemberNotFound = apperr.NotFound("referenced member")
	ErrReferencedGroupNotFound  = member.ErrReferencedGroupNotFound
)

// MemberReader resolves member references
type MemberReader interface {
	GetByID(ctx context.Context, id int64) (*member.Member, error)
}

// GroupReader resolves group references
type GroupReader interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
}

// Service handles contribution business logic and the aggregate views
type Service struct {
	repo     Repository
	members  MemberReader
	groups   GroupReader
	notifier notification.Notifier
}

// NewService creates a new contribution service
func NewService(repo Repository, members MemberReader, groups GroupReader, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{repo: repo, members: members, groups: groups, notifier: notifier}
}

// List retrieves all contributions, newest first
func (s *Service) List(ctx context.Context) ([]*Contribution, error) {
	return s.repo.List(ctx)
}

// GetByID retrieves a contribution by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Contribution, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContributionNotFound
	}
	return c, nil
}

// Create validates req, resolves the member and group, then stores a new
// contribution
func (s *Service) Create(ctx context.Context, req *ContributionRequest) (*Contribution, error) {
	c, err := s.create(ctx, req)
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityContribution, notification.ActionCreate, 0, err))
		return nil, err
	}

	slog.InfoContext(ctx, "Contribution created",
		"contribution_id", c.ID,
		"member_id", c.MemberID,
		"amount", c.Amount.StringFixed(2),
		"type", c.Type,
		"recorded_via", c.RecordedVia)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityContribution, notification.ActionCreate, c.ID,
		fmt.Sprintf("Contribution of %s created successfully for %s!", c.Amount.StringFixed(2), c.MemberName)))
	return c, nil
}

func (s *Service) create(ctx context.Context, req *ContributionRequest) (*Contribution, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.resolveReferences(ctx, in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

// Update validates req and replaces the contribution's fields
func (s *Service) Update(ctx context.Context, id int64, req *ContributionRequest) (*Contribution, error) {
	c, err := s.update(ctx, id, req)
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityContribution, notification.ActionUpdate, id, err))
		return nil, err
	}

	slog.InfoContext(ctx, "Contribution updated", "contribution_id", c.ID, "member_id", c.MemberID)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityContribution, notification.ActionUpdate, c.ID,
		"Contribution updated successfully!"))
	return c, nil
}

func (s *Service) update(ctx context.Context, id int64, req *ContributionRequest) (*Contribution, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.resolveReferences(ctx, in); err != nil {
		return nil, err
	}

	c, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContributionNotFound
	}
	return c, nil
}

// Delete removes a contribution
func (s *Service) Delete(ctx context.Context, id int64) error {
	c, err := s.GetByID(ctx, id)
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityContribution, notification.ActionDelete, id, err))
		return err
	}

	slog.InfoContext(ctx, "Contribution deleted", "contribution_id", id)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityContribution, notification.ActionDelete, id,
		fmt.Sprintf("Contribution of %s for %s deleted successfully!", c.Amount.StringFixed(2), c.MemberName)))
	return nil
}

// ForMember returns a member's contributions, newest first, with totals
func (s *Service) ForMember(ctx context.Context, memberID int64) (*MemberContributions, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	contributions, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	return &MemberContributions{
		Member:        m,
		Contributions: contributions,
		Totals:        Summarize(contributions),
	}, nil
}

// ForGroup returns the contributions of every member of a group, newest
// first then by member name, with totals
func (s *Service) ForGroup(ctx context.Context, groupID int64) (*GroupContributions, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	contributions, err := s.repo.ListByGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &GroupContributions{
		Group:         g,
		Contributions: contributions,
		Totals:        Summarize(contributions),
	}, nil
}

// resolveReferences checks the member and the group independently. A
// contribution filed under a group other than the member's is accepted and
// logged.
func (s *Service) resolveReferences(ctx context.Context, in *Input) error {
	m, err := s.members.GetByID(ctx, in.MemberID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return ErrReferencedMemberNotFound
		}
		return err
	}

	if _, err := s.groups.GetByID(ctx, in.GroupID); err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			return ErrReferencedGroupNotFound
		}
		return err
	}

	if m.GroupID != in.GroupID {
		slog.WarnContext(ctx, "Contribution group does not match member group",
			"member_id", m.ID,
			"member_group_id", m.GroupID,
			"contribution_group_id", in.GroupID)
	}
	return nil
}
