// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package identity

import (
	"time"

	"github.com/samber/oops"

	"github.com/wardenhq/warden/internal/credential"
)

// Identity is a validated account with its owned credential.
type Identity struct {
	id          string
	displayName string
	email       string
	birthDate   string
	born        time.Time
	age         int
	credential  *credential.Credential
	clock       Clock
}

// Option configures identity construction.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock sets the clock used for age derivation and birthday checks.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// New validates the attributes and returns an Identity. The first failed
// rule is returned as a *ValidationError wrapped with code IDENTITY_INVALID.
// birthDate is kept verbatim.
func New(id, displayName, email, birthDate string, cred *credential.Credential, opts ...Option) (*Identity, error) {
	o := options{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	attrs := &attributes{
		id:          id,
		displayName: displayName,
		email:       email,
		birthDate:   birthDate,
		now:         o.clock.Now(),
	}
	if verr := validate(attrs); verr != nil {
		return nil, oops.Code("IDENTITY_INVALID").With("rule", string(verr.Rule)).Wrap(verr)
	}
	if cred == nil {
		return nil, oops.Code("IDENTITY_CREDENTIAL_REQUIRED").
			With("rule", string(RuleCredential)).
			Wrap(&ValidationError{Rule: RuleCredential, Reason: "credential is required"})
	}

	return &Identity{
		id:          id,
		displayName: displayName,
		email:       email,
		birthDate:   birthDate,
		born:        attrs.born,
		age:         attrs.age,
		credential:  cred,
		clock:       o.clock,
	}, nil
}

// ID returns the canonical UUID string.
func (i *Identity) ID() string { return i.id }

// DisplayName returns the display name.
func (i *Identity) DisplayName() string { return i.displayName }

// Email returns the email address exactly as given.
func (i *Identity) Email() string { return i.email }

// BirthDate returns the birth date string exactly as given.
func (i *Identity) BirthDate() string { return i.birthDate }

// Credential returns the owned credential.
func (i *Identity) Credential() *credential.Credential { return i.credential }

// Age returns the age in whole years at construction time.
func (i *Identity) Age() int { return i.age }

// IsAdult reports age > 18. An 18-year-old is not an adult.
func (i *Identity) IsAdult() bool { return i.age > 18 }

// IsTeen reports age > 13 and not adult, so 18 counts as teen and 13 does not.
func (i *Identity) IsTeen() bool { return i.age > 13 && !i.IsAdult() }

// IsBirthdayToday compares month and day with the clock's current date.
func (i *Identity) IsBirthdayToday() bool {
	_, bm, bd := i.born.Date()
	_, nm, nd := i.clock.Now().Date()
	return bm == nm && bd == nd
}

// HasCredential reports whether candidate matches the owned credential.
func (i *Identity) HasCredential(candidate string) bool {
	return i.credential.Verify(candidate)
}
