package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type AuthService struct {
	store       ports.Store
	adminEmails map[string]struct{}
}

func NewAuthService(store ports.Store, adminEmails []string) *AuthService {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, address := range adminEmails {
		if a := normalizeAddress(address); a != "" {
			allow[a] = struct{}{}
		}
	}
	if len(allow) == 0 {
		logger.Warn("admin allow-list is empty, nobody can administer polls")
	}

	return &AuthService{
		store:       store,
		adminEmails: allow,
	}
}

// ResolveRequestContext maps a bearer secret key to an identity. A missing or
// unknown key, or a store failure, yields the anonymous identity.
func (s *AuthService) ResolveRequestContext(ctx context.Context, credential string) domain.Identity {
	identity, err := s.Resolve(ctx, credential)
	if err != nil {
		return domain.Anonymous()
	}
	return identity
}

// Resolve is ResolveRequestContext for callers that can turn a transient
// store outage into a retryable answer. It only fails with an error wrapping
// domain.ErrTransient; every other failure degrades to anonymous.
func (s *AuthService) Resolve(ctx context.Context, credential string) (domain.Identity, error) {
	key := strings.TrimSpace(credential)
	if key == "" {
		return domain.Anonymous(), nil
	}

	identity := domain.Anonymous()
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		person, err := tx.People().GetBySecretKey(ctx, key)
		if err != nil || person == nil {
			return err
		}
		emails, err := tx.Emails().ListByPerson(ctx, person.ID)
		if err != nil {
			return err
		}
		identity = domain.Identity{
			User:    person,
			IsAdmin: s.isAdmin(emails),
		}
		return nil
	})
	if err != nil {
		logger.WithError(err).Warn("failed to resolve credential")
		if errors.Is(err, domain.ErrTransient) {
			return domain.Anonymous(), err
		}
		return domain.Anonymous(), nil
	}
	return identity, nil
}

func (s *AuthService) isAdmin(emails []domain.Email) bool {
	for _, e := range emails {
		if _, ok := s.adminEmails[normalizeAddress(e.Address)]; ok {
			return true
		}
	}
	return false
}
