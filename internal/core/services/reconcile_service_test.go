package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/rollcall/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

func seedPeople(t *testing.T, svc *reconcileService, ids ...string) {
	t.Helper()

	people := make([]domain.DesiredPerson, 0, len(ids))
	aliases := make(map[string]string, len(ids))
	for _, id := range ids {
		people = append(people, domain.DesiredPerson{ID: id, Name: id})
		aliases[id+"@example.com"] = id
	}
	_, err := svc.ReconcileIdentities(context.Background(), people, aliases)
	require.NoError(t, err)
}

func newReconciler() *reconcileService {
	return NewReconcileService(memory.NewStore()).(*reconcileService)
}

func TestReconcileGroupDelta(t *testing.T) {
	svc := newReconciler()
	ctx := context.Background()
	seedPeople(t, svc, "a", "b", "c", "d")

	delta, err := svc.ReconcileGroup(ctx, "g", "G", []string{"a@example.com", "b@example.com", "c@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, delta.Added)
	assert.Empty(t, delta.Removed)

	delta, err = svc.ReconcileGroup(ctx, "g", "G", []string{"b@example.com", "c@example.com", "d@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, delta.Added)
	assert.Equal(t, []string{"a"}, delta.Removed)

	delta, err = svc.ReconcileGroup(ctx, "g", "G", []string{"B@example.com", "c@example.com", "d@example.com"})
	require.NoError(t, err)
	assert.True(t, delta.Empty())
}

func TestReconcileGroupUnknownEmailAppliesNothing(t *testing.T) {
	svc := newReconciler()
	ctx := context.Background()
	seedPeople(t, svc, "a", "b")

	_, err := svc.ReconcileGroup(ctx, "g", "G", []string{"a@example.com"})
	require.NoError(t, err)

	_, err = svc.ReconcileGroup(ctx, "g", "Renamed", []string{"b@example.com", "ghost@example.com"})
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
	assert.ErrorContains(t, err, "ghost@example.com")

	members, err := NewGroupService(svc.store).GroupMembers(ctx, domain.Identity{User: &domain.Person{ID: "x"}, IsAdmin: true}, "g")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "a", members[0].ID)

	groups, err := NewGroupService(svc.store).ListGroups(ctx, domain.Identity{User: &domain.Person{ID: "x"}, IsAdmin: true})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "G", groups[0].Name)
}

func TestReconcileGroupValidation(t *testing.T) {
	svc := newReconciler()
	ctx := context.Background()

	_, err := svc.ReconcileGroup(ctx, "Bad Slug", "G", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
	_, err = svc.ReconcileGroup(ctx, "g", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestReconcileIdentities(t *testing.T) {
	svc := newReconciler()
	ctx := context.Background()

	people := []domain.DesiredPerson{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}
	aliases := map[string]string{
		"alice@example.com": "alice",
		"old@example.com":   "alice",
		"bob@example.com":   "bob",
	}
	delta, err := svc.ReconcileIdentities(ctx, people, aliases)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, delta.People)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "old@example.com"}, delta.AliasesAdded)

	delta, err = svc.ReconcileIdentities(ctx, people, aliases)
	require.NoError(t, err)
	assert.True(t, delta.Empty())

	// Rename bob and retire old@example.com.
	people[1].Name = "Robert"
	delta, err = svc.ReconcileIdentities(ctx, people, map[string]string{
		"alice@example.com": "alice",
		"bob@example.com":   "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, delta.People)
	assert.Equal(t, []string{"old@example.com"}, delta.AliasesRemoved)
	assert.Empty(t, delta.AliasesAdded)

	delta, err = svc.ReconcileIdentities(ctx, people, map[string]string{
		"alice@example.com": "bob",
		"bob@example.com":   "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, delta.AliasesMoved)
	assert.Empty(t, delta.People)
}

func TestReconcileIdentitiesUnknownOwnerAppliesNothing(t *testing.T) {
	svc := newReconciler()
	ctx := context.Background()
	seedPeople(t, svc, "a")

	_, err := svc.ReconcileIdentities(ctx,
		[]domain.DesiredPerson{{ID: "a", Name: "Renamed"}},
		map[string]string{"a@example.com": "a", "z@example.com": "zed"},
	)
	assert.ErrorIs(t, err, domain.ErrUnknownReference)

	identity := NewIdentityService(svc.store)
	person, err := identity.ResolveByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a", person.Name)
	person, err = identity.ResolveByEmail(ctx, "z@example.com")
	require.NoError(t, err)
	assert.Nil(t, person)
}

func TestReconcileIdentitiesRejectsBadInput(t *testing.T) {
	svc := newReconciler()
	ctx := context.Background()

	_, err := svc.ReconcileIdentities(ctx, []domain.DesiredPerson{{ID: "a"}, {ID: "a"}}, nil)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.ReconcileIdentities(ctx, []domain.DesiredPerson{{ID: ""}}, nil)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.ReconcileIdentities(ctx,
		[]domain.DesiredPerson{{ID: "a"}, {ID: "b"}},
		map[string]string{"X@example.com": "a", "x@example.com": "b"},
	)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
