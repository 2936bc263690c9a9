package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

const pollColumns = `id, slug, name, isopen, isvisible, votes_yee, votes_nay, votes_abs, created_at`

// voteColumns is the only source of column names interpolated into SQL.
var voteColumns = map[domain.Choice]string{
	domain.ChoiceYee: "votes_yee",
	domain.ChoiceNay: "votes_nay",
	domain.ChoiceAbs: "votes_abs",
}

type pollRepository struct {
	tx *sql.Tx
}

func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	query := `
		INSERT INTO polls (id, slug, name, isopen, isvisible, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.tx.ExecContext(ctx, query, poll.ID, poll.Slug, poll.Name, poll.IsOpen, poll.IsVisible, poll.CreatedAt)
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func (r *pollRepository) GetBySlug(ctx context.Context, slug string) (*domain.Poll, error) {
	return r.getOne(ctx, `SELECT `+pollColumns+` FROM polls WHERE slug = $1`, slug)
}

func (r *pollRepository) GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Poll, error) {
	return r.getOne(ctx, `SELECT `+pollColumns+` FROM polls WHERE slug = $1 FOR UPDATE`, slug)
}

func (r *pollRepository) getOne(ctx context.Context, query, slug string) (*domain.Poll, error) {
	poll, err := scanPoll(r.tx.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get poll: %w", classify(err))
	}
	return poll, nil
}

func (r *pollRepository) List(ctx context.Context) ([]*domain.Poll, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+pollColumns+` FROM polls ORDER BY created_at DESC, slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", classify(err))
	}
	defer rows.Close()

	var polls []*domain.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", classify(err))
	}
	return polls, nil
}

func (r *pollRepository) SetOpen(ctx context.Context, pollID uuid.UUID, open bool) error {
	if _, err := r.tx.ExecContext(ctx, `UPDATE polls SET isopen = $2 WHERE id = $1`, pollID, open); err != nil {
		return fmt.Errorf("failed to update poll: %w", classify(err))
	}
	return nil
}

func (r *pollRepository) SetVisible(ctx context.Context, pollID uuid.UUID, visible bool) error {
	if _, err := r.tx.ExecContext(ctx, `UPDATE polls SET isvisible = $2 WHERE id = $1`, pollID, visible); err != nil {
		return fmt.Errorf("failed to update poll: %w", classify(err))
	}
	return nil
}

func (r *pollRepository) IncrementVote(ctx context.Context, pollID uuid.UUID, choice domain.Choice) error {
	column, ok := voteColumns[choice]
	if !ok {
		return domain.ErrInvalidChoice
	}

	// The isopen guard is re-evaluated against the latest committed row, so a
	// close that commits after the caller read the poll still wins.
	query := fmt.Sprintf(`UPDATE polls SET %[1]s = %[1]s + 1 WHERE id = $1 AND isopen`, column)
	res, err := r.tx.ExecContext(ctx, query, pollID)
	if err != nil {
		return fmt.Errorf("failed to increment votes: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment votes: %w", classify(err))
	}
	if n == 0 {
		return domain.ErrPollClosed
	}
	return nil
}

func (r *pollRepository) AddMember(ctx context.Context, member *domain.PollMember) error {
	query := `
		INSERT INTO poll_members (id, poll_id, person_id, voted)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.tx.ExecContext(ctx, query, member.ID, member.PollID, member.PersonID, member.Voted)
	if err != nil {
		return fmt.Errorf("failed to insert poll member: %w", classify(err))
	}
	return nil
}

func (r *pollRepository) GetMember(ctx context.Context, pollID uuid.UUID, personID string) (*domain.PollMember, error) {
	query := `SELECT id, poll_id, person_id, voted FROM poll_members WHERE poll_id = $1 AND person_id = $2`
	return r.getMember(ctx, query, pollID, personID)
}

func (r *pollRepository) GetMemberForUpdate(ctx context.Context, pollID uuid.UUID, personID string) (*domain.PollMember, error) {
	query := `SELECT id, poll_id, person_id, voted FROM poll_members WHERE poll_id = $1 AND person_id = $2 FOR UPDATE`
	return r.getMember(ctx, query, pollID, personID)
}

func (r *pollRepository) getMember(ctx context.Context, query string, pollID uuid.UUID, personID string) (*domain.PollMember, error) {
	var m domain.PollMember
	err := r.tx.QueryRowContext(ctx, query, pollID, personID).Scan(&m.ID, &m.PollID, &m.PersonID, &m.Voted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get poll member: %w", classify(err))
	}
	return &m, nil
}

func (r *pollRepository) MarkVoted(ctx context.Context, memberID uuid.UUID) error {
	if _, err := r.tx.ExecContext(ctx, `UPDATE poll_members SET voted = TRUE WHERE id = $1`, memberID); err != nil {
		return fmt.Errorf("failed to mark voted: %w", classify(err))
	}
	return nil
}

func (r *pollRepository) CountMembers(ctx context.Context, pollID uuid.UUID) (int, error) {
	var n int
	if err := r.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM poll_members WHERE poll_id = $1`, pollID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count poll members: %w", classify(err))
	}
	return n, nil
}

func (r *pollRepository) ListUnvoted(ctx context.Context, pollID uuid.UUID) ([]*domain.Person, error) {
	query := `
		SELECT p.id, p.name, p.secretkey
		FROM poll_members pm
		JOIN people p ON p.id = pm.person_id
		WHERE pm.poll_id = $1 AND NOT pm.voted
		ORDER BY p.name, p.id
	`
	rows, err := r.tx.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unvoted members: %w", classify(err))
	}
	defer rows.Close()

	return scanPeople(rows)
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var p domain.Poll
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.IsOpen, &p.IsVisible, &p.VotesYee, &p.VotesNay, &p.VotesAbs, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
