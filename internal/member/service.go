package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fkhayef/chama/internal/group"
	"github.com/fkhayef/chama/internal/notification"
	"github.com/fkhayef/chama/pkg/apperr"
)

// Common errors
var (
	ErrMemberNotFound          = apperr.NotFound("member")
	ErrReferencedGroupNotFound = apperr.NotFound("referenced group")
	ErrPhoneNumberInUse        = apperr.Conflict("phone number")
)

// GroupReader resolves group references
type GroupReader interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
}

// Service handles member business logic
type Service struct {
	repo     Repository
	groups   GroupReader
	notifier notification.Notifier
}

// NewService creates a new member service
func NewService(repo Repository, groups GroupReader, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{repo: repo, groups: groups, notifier: notifier}
}

// List retrieves all members ordered by group name, then name
func (s *Service) List(ctx context.Context) ([]*Member, error) {
	return s.repo.List(ctx)
}

// ListByGroup retrieves the members of one group ordered by name
func (s *Service) ListByGroup(ctx context.Context, groupID int64) ([]*Member, error) {
	if err := s.resolveGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, groupID)
}

// GetByID retrieves a member by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Member, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// Create validates req, checks the group reference and phone uniqueness,
// then stores a new member
func (s *Service) Create(ctx context.Context, req *MemberRequest) (*Member, error) {
	member, err := s.create(ctx, req)
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityMember, notification.ActionCreate, 0, err))
		return nil, err
	}

	slog.InfoContext(ctx, "Member created", "member_id", member.ID, "group_id", member.GroupID, "role", member.Role)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityMember, notification.ActionCreate, member.ID,
		fmt.Sprintf("Member %s created successfully!", member.Name)))
	return member, nil
}

func (s *Service) create(ctx context.Context, req *MemberRequest) (*Member, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.resolveGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}
	if err := s.checkPhoneAvailable(ctx, in.PhoneNumber, 0); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

// Update validates req and replaces the member's fields. The member may keep
// its own phone number.
func (s *Service) Update(ctx context.Context, id int64, req *MemberRequest) (*Member, error) {
	member, err := s.update(ctx, id, req)
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityMember, notification.ActionUpdate, id, err))
		return nil, err
	}

	slog.InfoContext(ctx, "Member updated", "member_id", member.ID, "group_id", member.GroupID)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityMember, notification.ActionUpdate, member.ID,
		fmt.Sprintf("Member %s updated successfully!", member.Name)))
	return member, nil
}

func (s *Service) update(ctx context.Context, id int64, req *MemberRequest) (*Member, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.resolveGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}
	if err := s.checkPhoneAvailable(ctx, in.PhoneNumber, id); err != nil {
		return nil, err
	}

	member, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// Delete removes a member and its contributions
func (s *Service) Delete(ctx context.Context, id int64) error {
	member, err := s.GetByID(ctx, id)
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}
	if err != nil {
		s.notifier.Notify(ctx, notification.Failed(notification.EntityMember, notification.ActionDelete, id, err))
		return err
	}

	slog.InfoContext(ctx, "Member deleted", "member_id", id)
	s.notifier.Notify(ctx, notification.Succeeded(notification.EntityMember, notification.ActionDelete, id,
		fmt.Sprintf("Member %s deleted successfully!", member.Name)))
	return nil
}

func (s *Service) resolveGroup(ctx context.Context, groupID int64) error {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			return ErrReferencedGroupNotFound
		}
		return err
	}
	return nil
}

func (s *Service) checkPhoneAvailable(ctx context.Context, phone string, selfID int64) error {
	holder, err := s.repo.GetByPhoneNumber(ctx, phone)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != selfID {
		return ErrPhoneNumberInUse
	}
	return nil
}
