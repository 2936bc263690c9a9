package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

// maxKeyAttempts bounds regeneration when a fresh key collides with one
// already issued to somebody else.
const maxKeyAttempts = 3

type identityService struct {
	store  ports.Store
	newKey func() (string, error)
}

func NewIdentityService(store ports.Store) ports.IdentityService {
	return &identityService{
		store:  store,
		newKey: generateSecretKey,
	}
}

func (s *identityService) UpsertPerson(ctx context.Context, id, name string) (*domain.Person, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: person id is required", domain.ErrBadRequest)
	}

	var person *domain.Person
	err := retryTransient(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
			if _, err := tx.People().Upsert(ctx, id, name); err != nil {
				return fmt.Errorf("failed to upsert person: %w", err)
			}
			p, err := tx.People().GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get person: %w", err)
			}
			person = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}

func (s *identityService) IssueKeyIfAbsent(ctx context.Context, personID string) (string, error) {
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		key, err := s.issueKey(ctx, personID)
		if errors.Is(err, domain.ErrConflict) {
			logger.WithField("person", personID).WithField("attempt", attempt).Warn("secret key collision, regenerating")
			continue
		}
		return key, err
	}
	return "", fmt.Errorf("failed to issue a unique secret key after %d attempts", maxKeyAttempts)
}

// issueKey locks the person row before looking at its key, so concurrent
// callers for the same person observe the key the first one stored.
func (s *identityService) issueKey(ctx context.Context, personID string) (string, error) {
	var key string
	err := retryTransient(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
			person, err := tx.People().GetByIDForUpdate(ctx, personID)
			if err != nil {
				return fmt.Errorf("failed to get person: %w", err)
			}
			if person == nil {
				return domain.ErrPersonNotFound
			}
			if person.HasKey() {
				key = person.SecretKey
				return nil
			}

			fresh, err := s.newKey()
			if err != nil {
				return err
			}
			if err := tx.People().SetSecretKey(ctx, personID, fresh); err != nil {
				return fmt.Errorf("failed to store secret key: %w", err)
			}
			key = fresh
			logger.WithField("person", personID).Info("secret key issued")
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *identityService) ResolveByKey(ctx context.Context, key string) (*domain.Person, error) {
	if key == "" {
		return nil, nil
	}

	var person *domain.Person
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.People().GetBySecretKey(ctx, key)
		person = p
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secret key: %w", err)
	}
	return person, nil
}

func (s *identityService) ResolveByEmail(ctx context.Context, address string) (*domain.Person, error) {
	address = normalizeAddress(address)
	if address == "" {
		return nil, nil
	}

	var person *domain.Person
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		email, err := tx.Emails().GetByAddress(ctx, address)
		if err != nil || email == nil {
			return err
		}
		p, err := tx.People().GetByID(ctx, email.PersonID)
		person = p
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve email: %w", err)
	}
	return person, nil
}

func (s *identityService) Emails(ctx context.Context, personID string) ([]domain.Email, error) {
	var emails []domain.Email
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		e, err := tx.Emails().ListByPerson(ctx, personID)
		emails = e
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

func (s *identityService) People(ctx context.Context) ([]*domain.Person, error) {
	var people []*domain.Person
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.People().List(ctx)
		people = p
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}
