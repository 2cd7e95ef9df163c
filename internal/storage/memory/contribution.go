package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/fkhayef/chama/internal/contribution"
)

// ContributionRepository implements contribution.Repository
type ContributionRepository struct {
	s *Store
}

var _ contribution.Repository = (*ContributionRepository)(nil)

// byDateThenMember orders newest date first, then member name, then newest id
func byDateThenMember(a, b *contribution.Contribution) int {
	return cmp.Or(
		b.Date.Compare(a.Date.Time),
		compareNames(a.MemberName, b.MemberName),
		cmp.Compare(b.ID, a.ID),
	)
}

func byDate(a, b *contribution.Contribution) int {
	return cmp.Or(b.Date.Compare(a.Date.Time), cmp.Compare(b.ID, a.ID))
}

// collect copies the matching contributions with member names filled. Caller holds mu.
func (r *ContributionRepository) collect(keep func(*contribution.Contribution) bool) []*contribution.Contribution {
	out := []*contribution.Contribution{}
	for _, c := range r.s.contributions {
		if keep(c) {
			out = append(out, r.withMemberName(c))
		}
	}
	return out
}

func (r *ContributionRepository) withMemberName(c *contribution.Contribution) *contribution.Contribution {
	cp := *c
	if m, ok := r.s.members[c.MemberID]; ok {
		cp.MemberName = m.Name
	}
	return &cp
}

// List returns every contribution
func (r *ContributionRepository) List(ctx context.Context) ([]*contribution.Contribution, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.collect(func(*contribution.Contribution) bool { return true })
	slices.SortFunc(out, byDateThenMember)
	return out, nil
}

// ListByMember returns a member's contributions
func (r *ContributionRepository) ListByMember(ctx context.Context, memberID int64) ([]*contribution.Contribution, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.collect(func(c *contribution.Contribution) bool { return c.MemberID == memberID })
	slices.SortFunc(out, byDate)
	return out, nil
}

// ListByGroupMembers returns the contributions of the group's current members
func (r *ContributionRepository) ListByGroupMembers(ctx context.Context, groupID int64) ([]*contribution.Contribution, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.collect(func(c *contribution.Contribution) bool {
		m, ok := r.s.members[c.MemberID]
		return ok && m.GroupID == groupID
	})
	slices.SortFunc(out, byDateThenMember)
	return out, nil
}

// GetByID returns the contribution or nil
func (r *ContributionRepository) GetByID(ctx context.Context, id int64) (*contribution.Contribution, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contributions[id]
	if !ok {
		return nil, nil
	}
	return r.withMemberName(c), nil
}

// checkReferences mirrors the foreign keys. Caller holds mu.
func (r *ContributionRepository) checkReferences(in *contribution.Input) error {
	if _, ok := r.s.members[in.MemberID]; !ok {
		return contribution.ErrReferencedMemberNotFound
	}
	if _, ok := r.s.groups[in.GroupID]; !ok {
		return contribution.ErrReferencedGroupNotFound
	}
	return nil
}

// Create stores a new contribution
func (r *ContributionRepository) Create(ctx context.Context, in *contribution.Input) (*contribution.Contribution, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkReferences(in); err != nil {
		return nil, err
	}

	c := &contribution.Contribution{
		ID:        r.s.nextID("contributions"),
		CreatedAt: r.s.now(),
	}
	apply(c, in)
	r.s.contributions[c.ID] = c
	return r.withMemberName(c), nil
}

// Update replaces the editable fields, returning nil when absent
func (r *ContributionRepository) Update(ctx context.Context, id int64, in *contribution.Input) (*contribution.Contribution, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contributions[id]
	if !ok {
		return nil, nil
	}
	if err := r.checkReferences(in); err != nil {
		return nil, err
	}

	apply(c, in)
	return r.withMemberName(c), nil
}

// Delete removes a contribution
func (r *ContributionRepository) Delete(ctx context.Context, id int64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.contributions[id]; !ok {
		return contribution.ErrContributionNotFound
	}
	delete(r.s.contributions, id)
	return nil
}

func apply(c *contribution.Contribution, in *contribution.Input) {
	c.GroupID = in.GroupID
	c.MemberID = in.MemberID
	c.Amount = in.Amount
	c.Date = in.Date
	c.Type = in.Type
	c.RecordedVia = in.RecordedVia
	c.Notes = in.Notes
}
