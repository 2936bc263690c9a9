package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type groupRepository struct {
	tx *sql.Tx
}

// Upsert always writes the row, so the group stays locked for the rest of
// the transaction whether it was created or not.
func (r *groupRepository) Upsert(ctx context.Context, slug, name string) (*domain.Group, error) {
	query := `
		INSERT INTO person_groups (id, slug, name) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, slug, name
	`
	var g domain.Group
	err := r.tx.QueryRowContext(ctx, query, uuid.New(), slug, name).Scan(&g.ID, &g.Slug, &g.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert group: %w", classify(err))
	}
	return &g, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	return r.getOne(ctx, `SELECT id, slug, name FROM person_groups WHERE slug = $1`, slug)
}

func (r *groupRepository) GetBySlugForShare(ctx context.Context, slug string) (*domain.Group, error) {
	return r.getOne(ctx, `SELECT id, slug, name FROM person_groups WHERE slug = $1 FOR SHARE`, slug)
}

func (r *groupRepository) getOne(ctx context.Context, query, slug string) (*domain.Group, error) {
	var g domain.Group
	err := r.tx.QueryRowContext(ctx, query, slug).Scan(&g.ID, &g.Slug, &g.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", classify(err))
	}
	return &g, nil
}

func (r *groupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT id, slug, name FROM person_groups ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", classify(err))
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Slug, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", classify(err))
	}
	return groups, nil
}

func (r *groupRepository) MemberIDs(ctx context.Context, groupID uuid.UUID) ([]string, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT person_id FROM person_group_members WHERE group_id = $1 ORDER BY person_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", classify(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", classify(err))
	}
	return ids, nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID uuid.UUID, personID string) error {
	query := `
		INSERT INTO person_group_members (group_id, person_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.tx.ExecContext(ctx, query, groupID, personID); err != nil {
		return fmt.Errorf("failed to add group member: %w", classify(err))
	}
	return nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID uuid.UUID, personID string) error {
	query := `DELETE FROM person_group_members WHERE group_id = $1 AND person_id = $2`
	if _, err := r.tx.ExecContext(ctx, query, groupID, personID); err != nil {
		return fmt.Errorf("failed to remove group member: %w", classify(err))
	}
	return nil
}
