// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package identity

import "context"

// Repository persists identities.
type Repository interface {
	// Save inserts or replaces the identity with the same ID.
	// Returns ErrEmailConflict if a different identity already has the email.
	Save(ctx context.Context, identity *Identity) error

	// FindByID returns ErrNotFound if no identity has the ID.
	FindByID(ctx context.Context, id string) (*Identity, error)

	// FindByEmail matches the email exactly.
	// Returns ErrNotFound if no identity has the email.
	FindByEmail(ctx context.Context, email string) (*Identity, error)

	// FindAll returns every identity ordered by ID.
	FindAll(ctx context.Context) ([]*Identity, error)

	// Delete removes the identity. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error
}
