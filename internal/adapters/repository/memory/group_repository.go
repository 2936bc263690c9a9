package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type groupRepository struct {
	st *state
}

func (r groupRepository) Upsert(_ context.Context, slug, name string) (*domain.Group, error) {
	g, ok := r.st.groups[slug]
	if !ok {
		g = domain.Group{ID: uuid.New(), Slug: slug}
		r.st.groupMembers[g.ID] = make(map[string]struct{})
	}
	g.Name = name
	r.st.groups[slug] = g
	return &g, nil
}

func (r groupRepository) GetBySlug(_ context.Context, slug string) (*domain.Group, error) {
	g, ok := r.st.groups[slug]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r groupRepository) GetBySlugForShare(ctx context.Context, slug string) (*domain.Group, error) {
	return r.GetBySlug(ctx, slug)
}

func (r groupRepository) List(_ context.Context) ([]*domain.Group, error) {
	groups := make([]*domain.Group, 0, len(r.st.groups))
	for _, g := range r.st.groups {
		groups = append(groups, &g)
	}
	slices.SortFunc(groups, func(a, b *domain.Group) int { return strings.Compare(a.Slug, b.Slug) })
	return groups, nil
}

func (r groupRepository) MemberIDs(_ context.Context, groupID uuid.UUID) ([]string, error) {
	ids := make([]string, 0, len(r.st.groupMembers[groupID]))
	for id := range r.st.groupMembers[groupID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r groupRepository) AddMember(_ context.Context, groupID uuid.UUID, personID string) error {
	if _, ok := r.st.people[personID]; !ok {
		return domain.ErrPersonNotFound
	}
	members, ok := r.st.groupMembers[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	members[personID] = struct{}{}
	return nil
}

func (r groupRepository) RemoveMember(_ context.Context, groupID uuid.UUID, personID string) error {
	delete(r.st.groupMembers[groupID], personID)
	return nil
}
