package ports

import (
	"context"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

// Lookups return (nil, nil) when nothing matches.
type PersonRepository interface {
	// Upsert inserts the person or renames it. It reports whether a row was
	// created or changed and never touches the secret key.
	Upsert(ctx context.Context, id, name string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Person, error)
	GetBySecretKey(ctx context.Context, key string) (*domain.Person, error)
	// SetSecretKey returns domain.ErrConflict when the key is already taken.
	SetSecretKey(ctx context.Context, id, key string) error
	List(ctx context.Context) ([]*domain.Person, error)
}

type EmailRepository interface {
	// Lock serializes whole-table alias reconciliation.
	Lock(ctx context.Context) error
	GetByAddress(ctx context.Context, address string) (*domain.Email, error)
	ListByPerson(ctx context.Context, personID string) ([]domain.Email, error)
	ListAll(ctx context.Context) ([]domain.Email, error)
	// Upsert inserts the alias or re-points it to personID.
	Upsert(ctx context.Context, address, personID string) error
	Delete(ctx context.Context, address string) error
}
