// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package account_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wardenhq/warden/internal/identity"
)

// mockRepository is a testify mock of identity.Repository.
type mockRepository struct {
	mock.Mock
}

var _ identity.Repository = (*mockRepository)(nil)

func (m *mockRepository) Save(ctx context.Context, ident *identity.Identity) error {
	return m.Called(ctx, ident).Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*identity.Identity, error) {
	args := m.Called(ctx, id)
	ident, _ := args.Get(0).(*identity.Identity)
	return ident, args.Error(1)
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	args := m.Called(ctx, email)
	ident, _ := args.Get(0).(*identity.Identity)
	return ident, args.Error(1)
}

func (m *mockRepository) FindAll(ctx context.Context) ([]*identity.Identity, error) {
	args := m.Called(ctx)
	all, _ := args.Get(0).([]*identity.Identity)
	return all, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
