package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/crmlite/contact-api/internal/domain"
)

const contactColumns = `id, name, email, phone, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// ContactRepository persists contacts in Postgres. The unique constraint on
// email is the atomic uniqueness mechanism; service-level pre-checks are an
// optimization only.
type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) GetAll(ctx context.Context) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("GetAll: %w", err)
	}
	return collectContacts(rows, "GetAll")
}

func (r *ContactRepository) GetActive(ctx context.Context) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts
		WHERE status = $1 ORDER BY created_at DESC, id DESC`,
		domain.ContactStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("GetActive: %w", err)
	}
	return collectContacts(rows, "GetActive")
}

func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id,
	)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

// GetByEmail expects the normalized (trimmed, lowercased) form; rows are
// always written normalized so a plain equality match is case-insensitive.
func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE email = $1`, email,
	)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return c, nil
}

func (r *ContactRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByEmail: %w", err)
	}
	return exists, nil
}

func (r *ContactRepository) Create(ctx context.Context, fields domain.NewContactFields) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO contacts (name, email, phone, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+contactColumns,
		fields.Name, fields.Email, fields.Phone, fields.Status,
	)
	c, err := scanContact(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("Create: %w", domain.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("Create: %w", err)
	}
	return c, nil
}

func (r *ContactRepository) Update(ctx context.Context, id int64, patch domain.ContactPatch) (*domain.Contact, error) {
	// An empty patch is a no-op read; updated_at only moves on real writes.
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Email != nil {
		appendSet("email", *patch.Email)
	}
	if patch.Phone != nil {
		appendSet("phone", *patch.Phone)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}

	query := `UPDATE contacts SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + contactColumns
	row := r.db.QueryRowContext(ctx, query, args...)

	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("Update: %w", domain.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return c, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Delete: rows affected: %w", err)
	}
	return rows > 0, nil
}

func collectContacts(rows *sql.Rows, op string) ([]domain.Contact, error) {
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return contacts, nil
}

func scanContact(s scanner) (*domain.Contact, error) {
	var c domain.Contact
	err := s.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// 23505 is unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
