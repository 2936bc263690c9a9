package ports

import (
	"context"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type ReconcileService interface {
	ReconcileGroup(ctx context.Context, slug, name string, desiredMemberEmails []string) (domain.MembershipDelta, error)
	// ReconcileIdentities converges people and aliases. desiredAliases maps
	// address to owning person id.
	ReconcileIdentities(ctx context.Context, desiredPeople []domain.DesiredPerson, desiredAliases map[string]string) (domain.IdentityDelta, error)
}

type GroupService interface {
	ListGroups(ctx context.Context, id domain.Identity) ([]*domain.Group, error)
	GroupMembers(ctx context.Context, id domain.Identity, slug string) ([]*domain.Person, error)
}
