package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

// Every transaction holds the store mutex, so row locks are no-ops here.

type personRepository struct {
	st *state
}

func (r personRepository) Upsert(_ context.Context, id, name string) (bool, error) {
	p, ok := r.st.people[id]
	if ok && p.Name == name {
		return false, nil
	}
	p.ID = id
	p.Name = name
	r.st.people[id] = p
	return true, nil
}

func (r personRepository) GetByID(_ context.Context, id string) (*domain.Person, error) {
	p, ok := r.st.people[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r personRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Person, error) {
	return r.GetByID(ctx, id)
}

func (r personRepository) GetBySecretKey(_ context.Context, key string) (*domain.Person, error) {
	if key == "" {
		return nil, nil
	}
	for _, p := range r.st.people {
		if p.SecretKey == key {
			return &p, nil
		}
	}
	return nil, nil
}

func (r personRepository) SetSecretKey(_ context.Context, id, key string) error {
	for otherID, other := range r.st.people {
		if otherID != id && other.SecretKey == key {
			return domain.ErrConflict
		}
	}
	p, ok := r.st.people[id]
	if !ok {
		return domain.ErrPersonNotFound
	}
	p.SecretKey = key
	r.st.people[id] = p
	return nil
}

func (r personRepository) List(_ context.Context) ([]*domain.Person, error) {
	people := make([]*domain.Person, 0, len(r.st.people))
	for _, p := range r.st.people {
		people = append(people, &p)
	}
	slices.SortFunc(people, func(a, b *domain.Person) int { return strings.Compare(a.ID, b.ID) })
	return people, nil
}

type emailRepository struct {
	st *state
}

func (r emailRepository) Lock(context.Context) error { return nil }

func (r emailRepository) GetByAddress(_ context.Context, address string) (*domain.Email, error) {
	owner, ok := r.st.emails[address]
	if !ok {
		return nil, nil
	}
	return &domain.Email{Address: address, PersonID: owner}, nil
}

func (r emailRepository) ListByPerson(_ context.Context, personID string) ([]domain.Email, error) {
	var emails []domain.Email
	for address, owner := range r.st.emails {
		if owner == personID {
			emails = append(emails, domain.Email{Address: address, PersonID: owner})
		}
	}
	sortEmails(emails)
	return emails, nil
}

func (r emailRepository) ListAll(_ context.Context) ([]domain.Email, error) {
	emails := make([]domain.Email, 0, len(r.st.emails))
	for address, owner := range r.st.emails {
		emails = append(emails, domain.Email{Address: address, PersonID: owner})
	}
	sortEmails(emails)
	return emails, nil
}

func (r emailRepository) Upsert(_ context.Context, address, personID string) error {
	if _, ok := r.st.people[personID]; !ok {
		return domain.ErrPersonNotFound
	}
	r.st.emails[address] = personID
	return nil
}

func (r emailRepository) Delete(_ context.Context, address string) error {
	delete(r.st.emails, address)
	return nil
}

func sortEmails(emails []domain.Email) {
	slices.SortFunc(emails, func(a, b domain.Email) int { return strings.Compare(a.Address, b.Address) })
}
