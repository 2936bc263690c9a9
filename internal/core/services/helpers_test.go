package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/rollcall/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

const adminEmail = "admin@example.com"

type fixture struct {
	store     *memory.Store
	identity  ports.IdentityService
	reconcile ports.ReconcileService
	polls     ports.PollService
	groups    ports.GroupService
	auth      *AuthService
	admin     domain.Identity
}

// newFixture seeds an admin plus p1 and p2, with p1 and p2 in group g1.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:     store,
		identity:  NewIdentityService(store),
		reconcile: NewReconcileService(store),
		polls:     NewPollService(store),
		groups:    NewGroupService(store),
		auth:      NewAuthService(store, []string{adminEmail}),
	}

	ctx := context.Background()
	_, err := f.reconcile.ReconcileIdentities(ctx,
		[]domain.DesiredPerson{{ID: "admin", Name: "Admin"}, {ID: "p1", Name: "Paula"}, {ID: "p2", Name: "Pedro"}},
		map[string]string{adminEmail: "admin", "p1@example.com": "p1", "p2@example.com": "p2"},
	)
	require.NoError(t, err)
	_, err = f.reconcile.ReconcileGroup(ctx, "g1", "Group one", []string{"p1@example.com", "p2@example.com"})
	require.NoError(t, err)

	f.admin = f.login(t, "admin")
	return f
}

// login issues a key to personID and resolves it the way a request would.
func (f *fixture) login(t *testing.T, personID string) domain.Identity {
	t.Helper()

	key, err := f.identity.IssueKeyIfAbsent(context.Background(), personID)
	require.NoError(t, err)
	id := f.auth.ResolveRequestContext(context.Background(), key)
	require.True(t, id.IsAuthenticated())
	return id
}

func (f *fixture) createPoll(t *testing.T, slug string) *domain.Poll {
	t.Helper()

	poll, err := f.polls.CreatePoll(context.Background(), f.admin, ports.CreatePollInput{
		Name:      "Poll " + slug,
		Slug:      slug,
		GroupSlug: "g1",
		Open:      true,
		Visible:   true,
	})
	require.NoError(t, err)
	return poll
}
