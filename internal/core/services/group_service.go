package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

type groupService struct {
	store ports.Store
}

func NewGroupService(store ports.Store) ports.GroupService {
	return &groupService{
		store: store,
	}
}

func (s *groupService) ListGroups(ctx context.Context, id domain.Identity) ([]*domain.Group, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}

	var groups []*domain.Group
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		g, err := tx.Groups().List(ctx)
		groups = g
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) GroupMembers(ctx context.Context, id domain.Identity, slug string) ([]*domain.Person, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}

	var members []*domain.Person
	err := inTx(ctx, s.store, func(ctx context.Context, tx ports.Tx) error {
		members = nil
		group, err := tx.Groups().GetBySlug(ctx, slug)
		if err != nil {
			return fmt.Errorf("failed to get group: %w", err)
		}
		if group == nil {
			return domain.ErrGroupNotFound
		}

		ids, err := tx.Groups().MemberIDs(ctx, group.ID)
		if err != nil {
			return fmt.Errorf("failed to get group members: %w", err)
		}
		for _, personID := range ids {
			p, err := tx.People().GetByID(ctx, personID)
			if err != nil {
				return fmt.Errorf("failed to get person: %w", err)
			}
			if p != nil {
				members = append(members, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}
