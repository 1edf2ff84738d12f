// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package identity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/credential"
	"github.com/wardenhq/warden/internal/identity"
	"github.com/wardenhq/warden/pkg/errutil"
)

const (
	validID       = "3f2b8c1e-9d4a-4e7b-8c6f-1a2b3c4d5e6f"
	validName     = "John Doe"
	validEmail    = "john@example.com"
	validBirthday = "2000-01-01"
	password      = "SecurePassword123!"
)

// today is 2026-06-15 for every test in this file.
var today = identity.FixedDate(2026, time.June, 15)

func newCredential(t *testing.T) *credential.Credential {
	t.Helper()
	scheme := credential.NewScheme(credential.WithParams(credential.Params{N: 1024, R: 8, P: 1}))
	cred, err := scheme.Derive(password)
	require.NoError(t, err)
	return cred
}

func newIdentity(t *testing.T, birthDate string) *identity.Identity {
	t.Helper()
	ident, err := identity.New(validID, validName, validEmail, birthDate, newCredential(t), identity.WithClock(today))
	require.NoError(t, err)
	return ident
}

func TestNew_Valid(t *testing.T) {
	cred := newCredential(t)
	ident, err := identity.New(validID, validName, validEmail, validBirthday, cred, identity.WithClock(today))
	require.NoError(t, err)

	assert.Equal(t, validID, ident.ID())
	assert.Equal(t, validName, ident.DisplayName())
	assert.Equal(t, validEmail, ident.Email())
	assert.Equal(t, validBirthday, ident.BirthDate())
	assert.Equal(t, 26, ident.Age())
	assert.Same(t, cred, ident.Credential())
}

func TestNew_RejectsInvalidAttributes(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		display   string
		email     string
		birthDate string
		rule      identity.Rule
		reason    string
	}{
		{"invalid id", "invalid-id", validName, validEmail, validBirthday, identity.RuleUUID, "id must be a uuid"},
		{"uuid without hyphens", "3f2b8c1e9d4a4e7b8c6f1a2b3c4d5e6f", validName, validEmail, validBirthday, identity.RuleUUID, "id must be a uuid"},
		{"uuid in braces", "{3f2b8c1e-9d4a-4e7b-8c6f-1a2b3c4d5e6f}", validName, validEmail, validBirthday, identity.RuleUUID, "id must be a uuid"},
		{"name too short", validID, "ab", validEmail, validBirthday, identity.RuleDisplayNameLength, "username must be between 3 and 50 characters"},
		{"name too long", validID, strings.Repeat("a", 51), validEmail, validBirthday, identity.RuleDisplayNameLength, "username must be between 3 and 50 characters"},
		{"invalid email", validID, validName, "invalid-email", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email with display name", validID, validName, "John <john@example.com>", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email without dotted domain", validID, validName, "john@localhost", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email domain with punctuation", validID, validName, "john@ex!ample.com", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email domain with underscore", validID, validName, "john@exa_mple.com", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email with one-letter tld", validID, validName, "a@b.c", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email with numeric tld", validID, validName, "john@example.123", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email label with leading hyphen", validID, validName, "john@-example.com", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email label with trailing hyphen", validID, validName, "john@example-.com", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email with trailing dot", validID, validName, "john@example.com.", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"email local part too long", validID, validName, strings.Repeat("a", 65) + "@example.com", validBirthday, identity.RuleEmail, "email must be a valid email"},
		{"invalid birth date", validID, validName, validEmail, "invalid-date", identity.RuleBirthDate, "birthday must be a date string"},
		{"impossible birth date", validID, validName, validEmail, "2000-02-30", identity.RuleBirthDate, "birthday must be a date string"},
		{"age five", validID, validName, validEmail, "2021-01-01", identity.RuleMinAge, "age must be a positive number and more than 6"},
		{"birth date in future", validID, validName, validEmail, "2030-01-01", identity.RuleMinAge, "age must be a positive number and more than 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := identity.New(tt.id, tt.display, tt.email, tt.birthDate, newCredential(t), identity.WithClock(today))
			assert.Nil(t, ident)
			require.Error(t, err)

			assert.ErrorIs(t, err, identity.ErrInvalidIdentity)
			var verr *identity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.rule, verr.Rule)
			assert.Equal(t, tt.reason, verr.Reason)
			errutil.AssertErrorCode(t, err, "IDENTITY_INVALID")
			errutil.AssertErrorContext(t, err, "rule", string(tt.rule))
		})
	}
}

func TestNew_FirstViolationWins(t *testing.T) {
	_, err := identity.New("invalid-id", "ab", "invalid-email", "invalid-date", nil, identity.WithClock(today))
	var verr *identity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, identity.RuleUUID, verr.Rule)

	_, err = identity.New(validID, "ab", "invalid-email", "invalid-date", nil, identity.WithClock(today))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, identity.RuleDisplayNameLength, verr.Rule)

	_, err = identity.New(validID, validName, "invalid-email", "invalid-date", nil, identity.WithClock(today))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, identity.RuleEmail, verr.Rule)
}

func TestNew_DisplayNameBoundsCountRunes(t *testing.T) {
	for _, name := range []string{"abc", strings.Repeat("a", 50), "Zoë", strings.Repeat("é", 50)} {
		_, err := identity.New(validID, name, validEmail, validBirthday, newCredential(t), identity.WithClock(today))
		assert.NoError(t, err, "name %q", name)
	}
	_, err := identity.New(validID, strings.Repeat("é", 51), validEmail, validBirthday, newCredential(t), identity.WithClock(today))
	assert.ErrorIs(t, err, identity.ErrInvalidIdentity)
}

func TestNew_AcceptsHostNameEmails(t *testing.T) {
	for _, email := range []string{
		"a@b.co",
		"first.last+tag@mail.example.com",
		"ops@my-company.io",
		"x@123.example.org",
		"user@example.xn--p1ai",
	} {
		_, err := identity.New(validID, validName, email, validBirthday, newCredential(t), identity.WithClock(today))
		assert.NoError(t, err, "email %q", email)
	}
}

func TestNew_RequiresCredential(t *testing.T) {
	ident, err := identity.New(validID, validName, validEmail, validBirthday, nil, identity.WithClock(today))
	assert.Nil(t, ident)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "IDENTITY_CREDENTIAL_REQUIRED")

	var verr *identity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, identity.RuleCredential, verr.Rule)
}

func TestNew_AcceptsDateTimeBirthDate(t *testing.T) {
	ident := newIdentity(t, "2000-06-15T08:30:00Z")
	assert.Equal(t, "2000-06-15T08:30:00Z", ident.BirthDate())
	assert.Equal(t, 26, ident.Age())
}

func TestAge(t *testing.T) {
	tests := []struct {
		birthDate string
		want      int
	}{
		{"2000-06-15", 26},
		{"2000-06-14", 26},
		{"2000-06-16", 25},
		{"2000-07-01", 25},
		{"2000-05-31", 26},
		{"2020-06-15", 6},
	}
	for _, tt := range tests {
		t.Run(tt.birthDate, func(t *testing.T) {
			assert.Equal(t, tt.want, newIdentity(t, tt.birthDate).Age())
		})
	}
}

func TestAge_MinimumBoundary(t *testing.T) {
	_, err := identity.New(validID, validName, validEmail, "2020-06-16", newCredential(t), identity.WithClock(today))
	var verr *identity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, identity.RuleMinAge, verr.Rule)
}

func TestIsAdultAndIsTeen(t *testing.T) {
	tests := []struct {
		age   int
		adult bool
		teen  bool
	}{
		{age: 6, adult: false, teen: false},
		{age: 13, adult: false, teen: false},
		{age: 14, adult: false, teen: true},
		{age: 15, adult: false, teen: true},
		{age: 18, adult: false, teen: true},
		{age: 19, adult: true, teen: false},
		{age: 20, adult: true, teen: false},
	}
	for _, tt := range tests {
		t.Run(time.Date(2026-tt.age, time.June, 15, 0, 0, 0, 0, time.UTC).Format(time.DateOnly), func(t *testing.T) {
			ident := newIdentity(t, time.Date(2026-tt.age, time.June, 15, 0, 0, 0, 0, time.UTC).Format(time.DateOnly))
			require.Equal(t, tt.age, ident.Age())
			assert.Equal(t, tt.adult, ident.IsAdult())
			assert.Equal(t, tt.teen, ident.IsTeen())
		})
	}
}

func TestIsBirthdayToday(t *testing.T) {
	assert.True(t, newIdentity(t, "2000-06-15").IsBirthdayToday())
	assert.False(t, newIdentity(t, "2000-06-14").IsBirthdayToday())
	assert.False(t, newIdentity(t, "2000-07-15").IsBirthdayToday())
}

func TestIsBirthdayToday_ReadsClockAtCallTime(t *testing.T) {
	clock := &steppingClock{now: time.Date(2026, time.June, 14, 12, 0, 0, 0, time.UTC)}
	ident, err := identity.New(validID, validName, validEmail, "2000-06-15", newCredential(t), identity.WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, 25, ident.Age())
	assert.False(t, ident.IsBirthdayToday())

	clock.now = clock.now.AddDate(0, 0, 1)
	assert.True(t, ident.IsBirthdayToday())
	assert.Equal(t, 25, ident.Age(), "age is fixed at construction")
}

func TestHasCredential(t *testing.T) {
	ident := newIdentity(t, validBirthday)
	assert.True(t, ident.HasCredential(password))
	assert.False(t, ident.HasCredential("WrongPassword123!"))
}

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time { return c.now }
