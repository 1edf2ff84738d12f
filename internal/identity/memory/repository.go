// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

// Package memory provides a process-local identity.Repository with no
// persistence guarantees.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/wardenhq/warden/internal/identity"
)

// Repository is an identity.Repository backed by a map.
// Identities are immutable, so stored pointers are returned directly.
type Repository struct {
	mu   sync.RWMutex
	byID map[string]*identity.Identity
}

var _ identity.Repository = (*Repository)(nil)

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{byID: make(map[string]*identity.Identity)}
}

// Save inserts or replaces the identity keyed by its ID.
func (r *Repository) Save(_ context.Context, ident *identity.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.byID {
		if id != ident.ID() && existing.Email() == ident.Email() {
			return oops.Code("IDENTITY_EMAIL_CONFLICT").
				With("email", ident.Email()).
				Wrap(identity.ErrEmailConflict)
		}
	}
	r.byID[ident.ID()] = ident
	return nil
}

// FindByID returns the identity with the given ID.
func (r *Repository) FindByID(_ context.Context, id string) (*identity.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("IDENTITY_NOT_FOUND").With("id", id).Wrap(identity.ErrNotFound)
	}
	return ident, nil
}

// FindByEmail returns the identity with exactly the given email.
func (r *Repository) FindByEmail(_ context.Context, email string) (*identity.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ident := range r.byID {
		if ident.Email() == email {
			return ident, nil
		}
	}
	return nil, oops.Code("IDENTITY_NOT_FOUND").With("email", email).Wrap(identity.ErrNotFound)
}

// FindAll returns all identities ordered by ID.
func (r *Repository) FindAll(_ context.Context) ([]*identity.Identity, error) {
	r.mu.RLock()
	all := make([]*identity.Identity, 0, len(r.byID))
	for _, ident := range r.byID {
		all = append(all, ident)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })
	return all, nil
}

// Delete removes the identity if present.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
	return nil
}

// Len returns the number of stored identities.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
