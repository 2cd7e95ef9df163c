package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/fkhayef/chama/internal/group"
)

// GroupRepository implements group.Repository
type GroupRepository struct {
	s *Store
}

var _ group.Repository = (*GroupRepository)(nil)

// List returns every group ordered by name
func (r *GroupRepository) List(ctx context.Context) ([]*group.Group, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	groups := make([]*group.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		cp := *g
		groups = append(groups, &cp)
	}
	slices.SortFunc(groups, func(a, b *group.Group) int {
		return cmp.Or(compareNames(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return groups, nil
}

// GetByID returns the group or nil
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*group.Group, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

// Create stores a new group
func (r *GroupRepository) Create(ctx context.Context, in *group.Input) (*group.Group, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g := &group.Group{
		ID:             r.s.nextID("groups"),
		Name:           in.Name,
		CycleStartDate: in.CycleStartDate,
		CreatedAt:      r.s.now(),
	}
	r.s.groups[g.ID] = g

	cp := *g
	return &cp, nil
}

// Update replaces the editable fields, returning nil when absent
func (r *GroupRepository) Update(ctx context.Context, id int64, in *group.Input) (*group.Group, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	g.Name = in.Name
	g.CycleStartDate = in.CycleStartDate

	cp := *g
	return &cp, nil
}

// Delete removes the group, its members and every contribution referencing either
func (r *GroupRepository) Delete(ctx context.Context, id int64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[id]; !ok {
		return group.ErrGroupNotFound
	}

	for cid, c := range r.s.contributions {
		if c.GroupID == id {
			delete(r.s.contributions, cid)
			continue
		}
		if m, ok := r.s.members[c.MemberID]; ok && m.GroupID == id {
			delete(r.s.contributions, cid)
		}
	}
	for mid, m := range r.s.members {
		if m.GroupID == id {
			delete(r.s.members, mid)
		}
	}
	delete(r.s.groups, id)
	return nil
}
