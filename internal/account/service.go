// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/wardenhq/warden/internal/credential"
	"github.com/wardenhq/warden/internal/identity"
	"github.com/wardenhq/warden/pkg/errutil"
)

// RegisterRequest carries the attributes of a new account.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Birthday string
}

// LoginRequest carries login input.
type LoginRequest struct {
	Email    string
	Password string
}

// dummyCredential is verified when the email is unknown. Its key is all
// zeros and matches no password.
//
//nolint:gosec // G101: not a real credential
var dummyCredential = strings.Repeat("0", credential.SaltLength*2) + ":" + strings.Repeat("0", credential.KeyLength*2)

// Service registers and authenticates accounts.
type Service struct {
	repo     identity.Repository
	scheme   *credential.Scheme
	dummy    *credential.Credential
	logger   *slog.Logger
	recorder Recorder
	clock    identity.Clock
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock sets the clock new identities are validated against.
func WithClock(c identity.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithIDGenerator sets the source of new identity IDs. Defaults to uuid.NewString.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService creates a Service.
func NewService(repo identity.Repository, scheme *credential.Scheme, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("ACCOUNT_CONFIG_INVALID").Errorf("repository is required")
	}
	if scheme == nil {
		return nil, oops.Code("ACCOUNT_CONFIG_INVALID").Errorf("credential scheme is required")
	}

	dummy, err := scheme.Reconstruct(dummyCredential)
	if err != nil {
		return nil, oops.Code("ACCOUNT_CONFIG_INVALID").With("operation", "build dummy credential").Wrap(err)
	}

	s := &Service{
		repo:     repo,
		scheme:   scheme,
		dummy:    dummy,
		logger:   slog.Default(),
		recorder: nopRecorder{},
		clock:    identity.SystemClock{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates and stores a new account.
// Duplicate emails return ErrEmailTaken; bad input returns an error for
// which IsClientError is true.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*identity.Identity, error) {
	_, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		s.recorder.ObserveRegistration(OutcomeConflict)
		s.logger.InfoContext(ctx, "registration rejected", "reason", "email taken")
		return nil, emailTaken(req.Email)
	case !errors.Is(err, identity.ErrNotFound):
		s.recorder.ObserveRegistration(OutcomeError)
		return nil, oops.With("operation", "check existing email").Wrap(err)
	}

	start := time.Now()
	cred, err := s.scheme.Derive(req.Password)
	if err != nil {
		if errors.Is(err, credential.ErrWeakSecret) {
			s.recorder.ObserveRegistration(OutcomeWeakPassword)
			s.logger.InfoContext(ctx, "registration rejected", "reason", "weak password")
			return nil, err //nolint:wrapcheck // client error keeps its code
		}
		s.recorder.ObserveRegistration(OutcomeError)
		return nil, oops.With("operation", "derive credential").Wrap(err)
	}
	s.recorder.ObserveKDF(OperationDerive, time.Since(start).Seconds())

	ident, err := identity.New(s.newID(), req.Username, req.Email, req.Birthday, cred, identity.WithClock(s.clock))
	if err != nil {
		s.recorder.ObserveRegistration(OutcomeInvalid)
		s.logger.InfoContext(ctx, "registration rejected", "reason", "invalid identity", "error", err)
		return nil, err //nolint:wrapcheck // client error keeps its code
	}

	if err := s.repo.Save(ctx, ident); err != nil {
		if errors.Is(err, identity.ErrEmailConflict) {
			s.recorder.ObserveRegistration(OutcomeConflict)
			return nil, emailTaken(req.Email)
		}
		s.recorder.ObserveRegistration(OutcomeError)
		return nil, oops.With("operation", "save identity").With("id", ident.ID()).Wrap(err)
	}

	s.recorder.ObserveRegistration(OutcomeSuccess)
	s.logger.InfoContext(ctx, "identity registered", "id", ident.ID())
	return ident, nil
}

// Login returns the account whose email and password match.
// Unknown email and wrong password both return ErrNotFound.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*identity.Identity, error) {
	ident, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			s.verify(s.dummy, req.Password)
			s.recorder.ObserveLogin(OutcomeNotFound)
			s.logger.InfoContext(ctx, "login failed", "reason", "unknown email")
			return nil, notFound()
		}
		s.recorder.ObserveLogin(OutcomeError)
		if errors.Is(err, credential.ErrInvalidFormat) {
			errutil.LogError(ctx, s.logger, "stored credential unreadable", err)
		}
		return nil, oops.With("operation", "find identity by email").Wrap(err)
	}

	if !s.verify(ident.Credential(), req.Password) {
		s.recorder.ObserveLogin(OutcomeWrongPassword)
		s.logger.WarnContext(ctx, "login failed", "reason", "wrong password", "id", ident.ID())
		return nil, notFound()
	}

	s.recorder.ObserveLogin(OutcomeSuccess)
	s.logger.InfoContext(ctx, "login succeeded", "id", ident.ID())
	return ident, nil
}

// Get returns the account with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*identity.Identity, error) {
	ident, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, notFound()
	}
	if err != nil {
		return nil, oops.With("operation", "find identity by id").With("id", id).Wrap(err)
	}
	return ident, nil
}

// List returns every account ordered by ID.
func (s *Service) List(ctx context.Context) ([]*identity.Identity, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, oops.With("operation", "list identities").Wrap(err)
	}
	return all, nil
}

// Remove deletes the account. Removing an unknown ID succeeds.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return oops.With("operation", "delete identity").With("id", id).Wrap(err)
	}
	s.logger.InfoContext(ctx, "identity removed", "id", id)
	return nil
}

func (s *Service) verify(cred *credential.Credential, password string) bool {
	start := time.Now()
	ok := cred.Verify(password)
	s.recorder.ObserveKDF(OperationVerify, time.Since(start).Seconds())
	return ok
}

func emailTaken(email string) error {
	return oops.Code("ACCOUNT_EMAIL_TAKEN").
		With("email", email).
		Wrapf(ErrEmailTaken, "user with email %s already exists", email)
}

func notFound() error {
	return oops.Code("ACCOUNT_NOT_FOUND").Wrap(ErrNotFound)
}
