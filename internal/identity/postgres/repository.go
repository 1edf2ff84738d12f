// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

// Package postgres implements identity.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/wardenhq/warden/internal/credential"
	"github.com/wardenhq/warden/internal/identity"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectColumns = `SELECT id::text, display_name, email, birth_date, credential FROM identities`

// Repository implements identity.Repository using PostgreSQL.
// Rows are rebuilt through identity.New, so a row that no longer passes
// validation surfaces as an error instead of a half-valid identity.
type Repository struct {
	db     DB
	scheme *credential.Scheme
	opts   []identity.Option
}

var _ identity.Repository = (*Repository)(nil)

// NewRepository creates a Repository. scheme reconstructs stored credentials;
// opts are applied to every rehydrated identity.
func NewRepository(db DB, scheme *credential.Scheme, opts ...identity.Option) *Repository {
	return &Repository{db: db, scheme: scheme, opts: opts}
}

// Save upserts the identity keyed by ID.
func (r *Repository) Save(ctx context.Context, ident *identity.Identity) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO identities (id, display_name, email, birth_date, credential)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			birth_date = EXCLUDED.birth_date,
			credential = EXCLUDED.credential,
			updated_at = now()
	`,
		ident.ID(),
		ident.DisplayName(),
		ident.Email(),
		ident.BirthDate(),
		ident.Credential().Export(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("IDENTITY_EMAIL_CONFLICT").
				With("email", ident.Email()).
				With("constraint", pgErr.ConstraintName).
				Wrap(identity.ErrEmailConflict)
		}
		return oops.Code("IDENTITY_SAVE_FAILED").
			With("operation", "upsert identity").
			With("id", ident.ID()).
			Wrap(err)
	}
	return nil
}

// FindByID returns the identity with the given ID.
// A malformed ID cannot match a uuid column and is reported as not found.
func (r *Repository) FindByID(ctx context.Context, id string) (*identity.Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, oops.Code("IDENTITY_NOT_FOUND").With("id", id).Wrap(identity.ErrNotFound)
	}
	row := r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)

	ident, err := r.scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").With("id", id).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get identity by id").With("id", id).Wrap(err)
	}
	return ident, nil
}

// FindByEmail returns the identity with exactly the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	row := r.db.QueryRow(ctx, selectColumns+` WHERE email = $1`, email)

	ident, err := r.scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").With("email", email).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get identity by email").With("email", email).Wrap(err)
	}
	return ident, nil
}

// FindAll returns every identity ordered by ID.
func (r *Repository) FindAll(ctx context.Context) ([]*identity.Identity, error) {
	rows, err := r.db.Query(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, oops.Code("IDENTITY_LIST_FAILED").With("operation", "list identities").Wrap(err)
	}
	defer rows.Close()

	var all []*identity.Identity
	for rows.Next() {
		ident, err := r.scanIdentity(rows)
		if err != nil {
			return nil, oops.With("operation", "scan identity").Wrap(err)
		}
		all = append(all, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("IDENTITY_LIST_FAILED").With("operation", "iterate identities").Wrap(err)
	}
	return all, nil
}

// Delete removes the identity if present.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return oops.Code("IDENTITY_DELETE_FAILED").
			With("operation", "delete identity").
			With("id", id).
			Wrap(err)
	}
	return nil
}

func (r *Repository) scanIdentity(row pgx.Row) (*identity.Identity, error) {
	var id, displayName, email, birthDate, serialized string
	if err := row.Scan(&id, &displayName, &email, &birthDate, &serialized); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers match pgx.ErrNoRows
		}
		return nil, oops.Code("IDENTITY_SCAN_FAILED").Wrap(err)
	}

	cred, err := r.scheme.Reconstruct(serialized)
	if err != nil {
		return nil, oops.With("id", id).Wrap(err)
	}
	ident, err := identity.New(id, displayName, email, birthDate, cred, r.opts...)
	if err != nil {
		return nil, oops.With("id", id).Wrap(err)
	}
	return ident, nil
}
