package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

type personRepository struct {
	tx *sql.Tx
}

func (r *personRepository) Upsert(ctx context.Context, id, name string) (bool, error) {
	query := `
		INSERT INTO people (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		WHERE people.name IS DISTINCT FROM EXCLUDED.name
	`
	res, err := r.tx.ExecContext(ctx, query, id, name)
	if err != nil {
		return false, fmt.Errorf("failed to upsert person: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *personRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	return r.getOne(ctx, `SELECT id, name, secretkey FROM people WHERE id = $1`, id)
}

func (r *personRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Person, error) {
	return r.getOne(ctx, `SELECT id, name, secretkey FROM people WHERE id = $1 FOR UPDATE`, id)
}

func (r *personRepository) GetBySecretKey(ctx context.Context, key string) (*domain.Person, error) {
	return r.getOne(ctx, `SELECT id, name, secretkey FROM people WHERE secretkey = $1`, key)
}

func (r *personRepository) getOne(ctx context.Context, query string, arg string) (*domain.Person, error) {
	person, err := scanPerson(r.tx.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get person: %w", classify(err))
	}
	return person, nil
}

func (r *personRepository) SetSecretKey(ctx context.Context, id, key string) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE people SET secretkey = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("failed to set secret key: %w", classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}

func (r *personRepository) List(ctx context.Context) ([]*domain.Person, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT id, name, secretkey FROM people ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", classify(err))
	}
	defer rows.Close()

	return scanPeople(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*domain.Person, error) {
	var (
		p   domain.Person
		key sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &key); err != nil {
		return nil, err
	}
	p.SecretKey = key.String
	return &p, nil
}

func scanPeople(rows *sql.Rows) ([]*domain.Person, error) {
	var people []*domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", classify(err))
	}
	return people, nil
}

type emailRepository struct {
	tx *sql.Tx
}

// Lock conflicts with itself and with row writers but not with readers.
func (r *emailRepository) Lock(ctx context.Context) error {
	if _, err := r.tx.ExecContext(ctx, `LOCK TABLE emails IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("failed to lock emails: %w", classify(err))
	}
	return nil
}

func (r *emailRepository) GetByAddress(ctx context.Context, address string) (*domain.Email, error) {
	var e domain.Email
	err := r.tx.QueryRowContext(ctx, `SELECT address, person_id FROM emails WHERE address = $1`, address).
		Scan(&e.Address, &e.PersonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get email: %w", classify(err))
	}
	return &e, nil
}

func (r *emailRepository) ListByPerson(ctx context.Context, personID string) ([]domain.Email, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT address, person_id FROM emails WHERE person_id = $1 ORDER BY address`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", classify(err))
	}
	defer rows.Close()

	return scanEmails(rows)
}

func (r *emailRepository) ListAll(ctx context.Context) ([]domain.Email, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT address, person_id FROM emails ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", classify(err))
	}
	defer rows.Close()

	return scanEmails(rows)
}

func (r *emailRepository) Upsert(ctx context.Context, address, personID string) error {
	query := `
		INSERT INTO emails (address, person_id) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET person_id = EXCLUDED.person_id
	`
	if _, err := r.tx.ExecContext(ctx, query, address, personID); err != nil {
		return fmt.Errorf("failed to upsert email: %w", classify(err))
	}
	return nil
}

func (r *emailRepository) Delete(ctx context.Context, address string) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM emails WHERE address = $1`, address); err != nil {
		return fmt.Errorf("failed to delete email: %w", classify(err))
	}
	return nil
}

func scanEmails(rows *sql.Rows) ([]domain.Email, error) {
	var emails []domain.Email
	for rows.Next() {
		var e domain.Email
		if err := rows.Scan(&e.Address, &e.PersonID); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating emails: %w", classify(err))
	}
	return emails, nil
}
