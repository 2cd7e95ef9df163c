package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/fkhayef/chama/internal/member"
)

// MemberRepository implements member.Repository
type MemberRepository struct {
	s *Store
}

var _ member.Repository = (*MemberRepository)(nil)

// withGroupName copies m and fills the joined group name. Caller holds mu.
func (r *MemberRepository) withGroupName(m *member.Member) *member.Member {
	cp := *m
	if g, ok := r.s.groups[m.GroupID]; ok {
		cp.GroupName = g.Name
	}
	return &cp
}

func (r *MemberRepository) collect(keep func(*member.Member) bool) []*member.Member {
	members := []*member.Member{}
	for _, m := range r.s.members {
		if keep(m) {
			members = append(members, r.withGroupName(m))
		}
	}
	return members
}

// List returns every member ordered by group name, then member name
func (r *MemberRepository) List(ctx context.Context) ([]*member.Member, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	members := r.collect(func(*member.Member) bool { return true })
	slices.SortFunc(members, func(a, b *member.Member) int {
		return cmp.Or(
			compareNames(a.GroupName, b.GroupName),
			compareNames(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return members, nil
}

// ListByGroup returns the members of one group ordered by name
func (r *MemberRepository) ListByGroup(ctx context.Context, groupID int64) ([]*member.Member, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	members := r.collect(func(m *member.Member) bool { return m.GroupID == groupID })
	slices.SortFunc(members, func(a, b *member.Member) int {
		return cmp.Or(compareNames(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return members, nil
}

// GetByID returns the member or nil
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*member.Member, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.members[id]
	if !ok {
		return nil, nil
	}
	return r.withGroupName(m), nil
}

// GetByPhoneNumber returns the member holding phone or nil
func (r *MemberRepository) GetByPhoneNumber(ctx context.Context, phone string) (*member.Member, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.members {
		if m.PhoneNumber == phone {
			return r.withGroupName(m), nil
		}
	}
	return nil, nil
}

// checkWrite enforces the group reference and phone uniqueness. Caller holds mu.
func (r *MemberRepository) checkWrite(selfID int64, in *member.Input) error {
	if _, ok := r.s.groups[in.GroupID]; !ok {
		return member.ErrReferencedGroupNotFound
	}
	for _, m := range r.s.members {
		if m.ID != selfID && m.PhoneNumber == in.PhoneNumber {
			return member.ErrPhoneNumberInUse
		}
	}
	return nil
}

// Create stores a new member
func (r *MemberRepository) Create(ctx context.Context, in *member.Input) (*member.Member, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkWrite(0, in); err != nil {
		return nil, err
	}

	m := &member.Member{
		ID:          r.s.nextID("members"),
		GroupID:     in.GroupID,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Role:        in.Role,
		JoinedAt:    r.s.now(),
	}
	r.s.members[m.ID] = m
	return r.withGroupName(m), nil
}

// Update replaces the editable fields, returning nil when absent
func (r *MemberRepository) Update(ctx context.Context, id int64, in *member.Input) (*member.Member, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.members[id]
	if !ok {
		return nil, nil
	}
	if err := r.checkWrite(id, in); err != nil {
		return nil, err
	}

	m.GroupID = in.GroupID
	m.Name = in.Name
	m.PhoneNumber = in.PhoneNumber
	m.Role = in.Role
	return r.withGroupName(m), nil
}

// Delete removes the member and its contributions
func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.members[id]; !ok {
		return member.ErrMemberNotFound
	}
	for cid, c := range r.s.contributions {
		if c.MemberID == id {
			delete(r.s.contributions, cid)
		}
	}
	delete(r.s.members, id)
	return nil
}
