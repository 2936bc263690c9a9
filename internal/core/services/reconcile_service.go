package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type reconcileService struct {
	store ports.Store
}

func NewReconcileService(store ports.Store) ports.ReconcileService {
	return &reconcileService{
		store: store,
	}
}

// ReconcileGroup converges a group's membership to the persons owning
// desiredMemberEmails. The group is created if it does not exist.
func (s *reconcileService) ReconcileGroup(ctx context.Context, slug, name string, desiredMemberEmails []string) (domain.MembershipDelta, error) {
	if !validSlug(slug) {
		return domain.MembershipDelta{}, fmt.Errorf("%w: %q", domain.ErrInvalidSlug, slug)
	}
	if strings.TrimSpace(name) == "" {
		return domain.MembershipDelta{}, domain.ErrInvalidName
	}

	var delta domain.MembershipDelta
	err := retryTransient(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
			group, err := tx.Groups().Upsert(ctx, slug, name)
			if err != nil {
				return fmt.Errorf("failed to upsert group: %w", err)
			}

			desired, err := resolveMembers(ctx, tx, desiredMemberEmails)
			if err != nil {
				return err
			}
			current, err := tx.Groups().MemberIDs(ctx, group.ID)
			if err != nil {
				return fmt.Errorf("failed to get group members: %w", err)
			}

			toAdd, toRemove := setDiff(current, desired)
			for _, personID := range toAdd {
				if err := tx.Groups().AddMember(ctx, group.ID, personID); err != nil {
					return fmt.Errorf("failed to add member %s: %w", personID, err)
				}
			}
			for _, personID := range toRemove {
				if err := tx.Groups().RemoveMember(ctx, group.ID, personID); err != nil {
					return fmt.Errorf("failed to remove member %s: %w", personID, err)
				}
			}

			delta = domain.MembershipDelta{Added: toAdd, Removed: toRemove}
			return nil
		})
	})
	if err != nil {
		return domain.MembershipDelta{}, err
	}

	if !delta.Empty() {
		logger.WithFields(logrus.Fields{
			"group":   slug,
			"added":   len(delta.Added),
			"removed": len(delta.Removed),
		}).Info("group membership reconciled")
	}
	return delta, nil
}

// resolveMembers maps every address to its owner. Any unknown address fails
// the whole lookup.
func resolveMembers(ctx context.Context, tx ports.Tx, addresses []string) ([]string, error) {
	var (
		ids     []string
		unknown []string
	)
	for _, raw := range addresses {
		address := normalizeAddress(raw)
		email, err := tx.Emails().GetByAddress(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("failed to get email: %w", err)
		}
		if email == nil {
			unknown = append(unknown, address)
			continue
		}
		ids = append(ids, email.PersonID)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: emails %s", domain.ErrUnknownReference, strings.Join(unknown, ", "))
	}
	return ids, nil
}

func (s *reconcileService) ReconcileIdentities(ctx context.Context, desiredPeople []domain.DesiredPerson, desiredAliases map[string]string) (domain.IdentityDelta, error) {
	people := make(map[string]string, len(desiredPeople))
	for _, p := range desiredPeople {
		if strings.TrimSpace(p.ID) == "" {
			return domain.IdentityDelta{}, fmt.Errorf("%w: person id is required", domain.ErrBadRequest)
		}
		if _, dup := people[p.ID]; dup {
			return domain.IdentityDelta{}, fmt.Errorf("%w: duplicate person id %q", domain.ErrBadRequest, p.ID)
		}
		people[p.ID] = p.Name
	}

	aliases := make(map[string]string, len(desiredAliases))
	for raw, owner := range desiredAliases {
		address := normalizeAddress(raw)
		if address == "" {
			return domain.IdentityDelta{}, fmt.Errorf("%w: empty email address", domain.ErrBadRequest)
		}
		if prev, dup := aliases[address]; dup && prev != owner {
			return domain.IdentityDelta{}, fmt.Errorf("%w: email %q assigned to both %q and %q", domain.ErrBadRequest, address, prev, owner)
		}
		aliases[address] = owner
	}

	var delta domain.IdentityDelta
	err := retryTransient(ctx, func() error {
		delta = domain.IdentityDelta{}
		return s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
			if err := tx.Emails().Lock(ctx); err != nil {
				return fmt.Errorf("failed to lock emails: %w", err)
			}
			if err := checkAliasOwners(ctx, tx, people, aliases); err != nil {
				return err
			}

			ids := make([]string, 0, len(people))
			for id := range people {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			for _, id := range ids {
				changed, err := tx.People().Upsert(ctx, id, people[id])
				if err != nil {
					return fmt.Errorf("failed to upsert person %s: %w", id, err)
				}
				if changed {
					delta.People = append(delta.People, id)
				}
			}

			stored, err := tx.Emails().ListAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to list emails: %w", err)
			}
			current := make(map[string]string, len(stored))
			currentAddrs := make([]string, 0, len(stored))
			for _, e := range stored {
				current[e.Address] = e.PersonID
				currentAddrs = append(currentAddrs, e.Address)
			}
			desiredAddrs := make([]string, 0, len(aliases))
			for address := range aliases {
				desiredAddrs = append(desiredAddrs, address)
			}

			toAdd, toRemove := setDiff(currentAddrs, desiredAddrs)
			for _, address := range toRemove {
				if err := tx.Emails().Delete(ctx, address); err != nil {
					return fmt.Errorf("failed to delete email %s: %w", address, err)
				}
			}
			delta.AliasesRemoved = toRemove

			for _, address := range toAdd {
				if err := tx.Emails().Upsert(ctx, address, aliases[address]); err != nil {
					return fmt.Errorf("failed to add email %s: %w", address, err)
				}
			}
			delta.AliasesAdded = toAdd

			slices.Sort(desiredAddrs)
			for _, address := range desiredAddrs {
				owner, ok := current[address]
				if !ok || owner == aliases[address] {
					continue
				}
				if err := tx.Emails().Upsert(ctx, address, aliases[address]); err != nil {
					return fmt.Errorf("failed to move email %s: %w", address, err)
				}
				delta.AliasesMoved = append(delta.AliasesMoved, address)
			}
			return nil
		})
	})
	if err != nil {
		return domain.IdentityDelta{}, err
	}

	if !delta.Empty() {
		logger.WithFields(logrus.Fields{
			"people":          len(delta.People),
			"aliases_added":   len(delta.AliasesAdded),
			"aliases_moved":   len(delta.AliasesMoved),
			"aliases_removed": len(delta.AliasesRemoved),
		}).Info("identities reconciled")
	}
	return delta, nil
}

// checkAliasOwners requires every alias owner to be either part of the
// desired people or already stored.
func checkAliasOwners(ctx context.Context, tx ports.Tx, people, aliases map[string]string) error {
	var unknown []string
	seen := make(map[string]struct{})
	for _, owner := range aliases {
		if _, ok := people[owner]; ok {
			continue
		}
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}

		p, err := tx.People().GetByID(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to get person: %w", err)
		}
		if p == nil {
			unknown = append(unknown, owner)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("%w: people %s", domain.ErrUnknownReference, strings.Join(unknown, ", "))
	}
	return nil
}
