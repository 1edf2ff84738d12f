// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/scrypt"
)

// Fixed sizes of the stored material, in bytes before hex encoding.
const (
	SaltLength = 16
	KeyLength  = 64
)

const fieldSeparator = ":"

// Params controls scrypt cost. N must be a power of two greater than 1.
type Params struct {
	N int `koanf:"n" json:"n" jsonschema:"minimum=2"`
	R int `koanf:"r" json:"r" jsonschema:"minimum=1"`
	P int `koanf:"p" json:"p" jsonschema:"minimum=1"`
}

// DefaultParams returns N=16384, r=8, p=1 (16 MiB of memory per derivation).
func DefaultParams() Params {
	return Params{N: 16384, R: 8, P: 1}
}

// Scheme derives and reconstructs credentials with fixed scrypt parameters,
// strength policy and random source. A Scheme is safe for concurrent use.
type Scheme struct {
	params Params
	policy Policy
	rand   io.Reader
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithParams sets the scrypt cost parameters.
func WithParams(p Params) Option {
	return func(s *Scheme) { s.params = p }
}

// WithPolicy sets the strength policy enforced by Derive.
func WithPolicy(p Policy) Option {
	return func(s *Scheme) { s.policy = p }
}

// WithRandom sets the source of salt bytes. Defaults to crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(s *Scheme) { s.rand = r }
}

// NewScheme creates a Scheme with default params and policy.
func NewScheme(opts ...Option) *Scheme {
	s := &Scheme{
		params: DefaultParams(),
		policy: DefaultPolicy(),
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the scrypt parameters of the scheme.
func (s *Scheme) Params() Params { return s.params }

// Policy returns the strength policy of the scheme.
func (s *Scheme) Policy() Policy { return s.policy }

var defaultScheme = NewScheme()

// Derive derives a credential from plaintext using the default scheme.
func Derive(plaintext string) (*Credential, error) {
	return defaultScheme.Derive(plaintext)
}

// Reconstruct parses a stored credential using the default scheme.
func Reconstruct(serialized string) (*Credential, error) {
	return defaultScheme.Reconstruct(serialized)
}

// Derive checks plaintext against the strength policy and, if it passes,
// hashes it with a fresh random salt.
func (s *Scheme) Derive(plaintext string) (*Credential, error) {
	if err := s.policy.Check(plaintext); err != nil {
		var weak *WeakSecretError
		rule := ""
		if errors.As(err, &weak) {
			rule = string(weak.Rule)
		}
		return nil, oops.Code("CREDENTIAL_WEAK_SECRET").With("rule", rule).Wrap(err)
	}

	raw := make([]byte, SaltLength)
	if _, err := io.ReadFull(s.rand, raw); err != nil {
		return nil, oops.Code("CREDENTIAL_SALT_FAILED").Wrap(err)
	}
	salt := hex.EncodeToString(raw)

	key, err := stretch(plaintext, salt, s.params)
	if err != nil {
		return nil, oops.Code("CREDENTIAL_DERIVE_FAILED").
			With("n", s.params.N).
			With("r", s.params.R).
			With("p", s.params.P).
			Wrap(err)
	}

	return &Credential{salt: salt, key: hex.EncodeToString(key), params: s.params}, nil
}

// Reconstruct parses "<salt_hex>:<key_hex>". The strength policy is not
// applied: stored credentials stay loadable after the policy tightens.
func (s *Scheme) Reconstruct(serialized string) (*Credential, error) {
	parts := strings.Split(serialized, fieldSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, oops.Code("CREDENTIAL_INVALID_FORMAT").
			With("fields", len(parts)).
			Wrap(ErrInvalidFormat)
	}
	return &Credential{salt: parts[0], key: parts[1], params: s.params}, nil
}

func stretch(plaintext, salt string, p Params) ([]byte, error) {
	//nolint:wrapcheck // callers attach codes
	return scrypt.Key([]byte(plaintext), []byte(salt), p.N, p.R, p.P, KeyLength)
}

// Credential is an immutable salted hash of a secret.
type Credential struct {
	salt   string
	key    string
	params Params
}

// Verify reports whether candidate hashes to the stored key. The comparison
// runs in constant time. Any failure is treated as a mismatch.
func (c *Credential) Verify(candidate string) bool {
	if c == nil {
		return false
	}
	expected, err := hex.DecodeString(c.key)
	if err != nil {
		return false
	}
	got, err := stretch(candidate, c.salt, c.params)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, expected) == 1
}

// Export returns the stored form "<salt_hex>:<key_hex>".
func (c *Credential) Export() string {
	return c.salt + fieldSeparator + c.key
}

// String hides the hash from logs and fmt output.
func (c *Credential) String() string {
	return "credential([REDACTED])"
}

// GoString hides the hash from %#v output.
func (c *Credential) GoString() string {
	return c.String()
}
