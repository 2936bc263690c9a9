package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type GroupRepository interface {
	// Upsert creates the group or renames it, leaving its row write-locked.
	Upsert(ctx context.Context, slug, name string) (*domain.Group, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Group, error)
	// GetBySlugForShare blocks concurrent reconciliation of the group until the
	// transaction ends.
	GetBySlugForShare(ctx context.Context, slug string) (*domain.Group, error)
	List(ctx context.Context) ([]*domain.Group, error)
	MemberIDs(ctx context.Context, groupID uuid.UUID) ([]string, error)
	// AddMember and RemoveMember are set operations: adding a present member
	// or removing an absent one is a no-op.
	AddMember(ctx context.Context, groupID uuid.UUID, personID string) error
	RemoveMember(ctx context.Context, groupID uuid.UUID, personID string) error
}
