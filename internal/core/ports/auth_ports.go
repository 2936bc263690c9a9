package ports

import (
	"context"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type AuthService interface {
	// ResolveRequestContext never fails; anything short of a resolved key
	// yields domain.Anonymous().
	ResolveRequestContext(ctx context.Context, credential string) domain.Identity
	// Resolve differs only in reporting transient store errors, wrapping
	// domain.ErrTransient, instead of degrading.
	Resolve(ctx context.Context, credential string) (domain.Identity, error)
}

type IdentityService interface {
	UpsertPerson(ctx context.Context, id, name string) (*domain.Person, error)
	IssueKeyIfAbsent(ctx context.Context, personID string) (string, error)
	ResolveByKey(ctx context.Context, key string) (*domain.Person, error)
	ResolveByEmail(ctx context.Context, address string) (*domain.Person, error)
	Emails(ctx context.Context, personID string) ([]domain.Email, error)
	People(ctx context.Context) ([]*domain.Person, error)
}

type AccessService interface {
	RequestAccess(ctx context.Context, address string) error
}

// KeyNotifier delivers an issued secret key to its owner.
type KeyNotifier interface {
	SendSecretKey(ctx context.Context, address, key string) error
}
