// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package credential_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/credential"
	"github.com/wardenhq/warden/pkg/errutil"
)

const strongPassword = "SecurePassword123!"

// testParams keeps scrypt cheap in tests.
var testParams = credential.Params{N: 1024, R: 8, P: 1}

func newScheme(opts ...credential.Option) *credential.Scheme {
	return credential.NewScheme(append([]credential.Option{credential.WithParams(testParams)}, opts...)...)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestDerive(t *testing.T) {
	scheme := newScheme()

	t.Run("produces salt and key of fixed length", func(t *testing.T) {
		cred, err := scheme.Derive(strongPassword)
		require.NoError(t, err)

		parts := strings.Split(cred.Export(), ":")
		require.Len(t, parts, 2)
		assert.Len(t, parts[0], credential.SaltLength*2)
		assert.Len(t, parts[1], credential.KeyLength*2)
	})

	t.Run("same plaintext produces different stored forms", func(t *testing.T) {
		first, err := scheme.Derive(strongPassword)
		require.NoError(t, err)
		second, err := scheme.Derive(strongPassword)
		require.NoError(t, err)

		assert.NotEqual(t, first.Export(), second.Export())
		assert.True(t, first.Verify(strongPassword))
		assert.True(t, second.Verify(strongPassword))
	})

	t.Run("uses injected random source for the salt", func(t *testing.T) {
		salt := bytes.Repeat([]byte{0xab}, credential.SaltLength)
		cred, err := newScheme(credential.WithRandom(bytes.NewReader(salt))).Derive(strongPassword)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(cred.Export(), strings.Repeat("ab", credential.SaltLength)+":"))
	})

	t.Run("random source failure is reported", func(t *testing.T) {
		_, err := newScheme(credential.WithRandom(failingReader{})).Derive(strongPassword)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CREDENTIAL_SALT_FAILED")
	})

	t.Run("invalid scrypt params are reported", func(t *testing.T) {
		_, err := credential.NewScheme(credential.WithParams(credential.Params{N: 3, R: 8, P: 1})).Derive(strongPassword)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CREDENTIAL_DERIVE_FAILED")
	})

	t.Run("weak secret is rejected before touching the random source", func(t *testing.T) {
		_, err := newScheme(credential.WithRandom(failingReader{})).Derive("weak")
		require.Error(t, err)
		assert.ErrorIs(t, err, credential.ErrWeakSecret)
		errutil.AssertErrorCode(t, err, "CREDENTIAL_WEAK_SECRET")
	})
}

func TestDerive_StrengthPolicy(t *testing.T) {
	scheme := newScheme()

	tests := []struct {
		name     string
		password string
		rule     credential.Rule
	}{
		{name: "no uppercase", password: "securepassword123!", rule: credential.RuleUppercase},
		{name: "no lowercase", password: "SECUREPASSWORD123!", rule: credential.RuleLowercase},
		{name: "no digit", password: "SecurePassword!", rule: credential.RuleDigit},
		{name: "no symbol", password: "SecurePassword123", rule: credential.RuleSymbol},
		{name: "too short", password: "Pass1!", rule: credential.RuleMinLength},
		{name: "empty", password: "", rule: credential.RuleMinLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := scheme.Derive(tt.password)
			assert.Nil(t, cred)
			require.Error(t, err)

			var weak *credential.WeakSecretError
			require.ErrorAs(t, err, &weak)
			assert.Equal(t, tt.rule, weak.Rule)
			errutil.AssertErrorContext(t, err, "rule", string(tt.rule))
			assert.Contains(t, err.Error(), "password must be strong")
		})
	}

	t.Run("accepts strong password", func(t *testing.T) {
		cred, err := scheme.Derive(strongPassword)
		require.NoError(t, err)
		assert.NotNil(t, cred)
	})
}

func TestVerify(t *testing.T) {
	scheme := newScheme()
	cred, err := scheme.Derive(strongPassword)
	require.NoError(t, err)

	t.Run("matches original plaintext", func(t *testing.T) {
		assert.True(t, cred.Verify(strongPassword))
	})

	t.Run("rejects other candidates", func(t *testing.T) {
		for _, candidate := range []string{"WrongPassword123!", "SecurePassword123", "", strongPassword + " "} {
			assert.False(t, cred.Verify(candidate), "candidate %q", candidate)
		}
	})

	t.Run("nil credential never matches", func(t *testing.T) {
		var nilCred *credential.Credential
		assert.False(t, nilCred.Verify(strongPassword))
	})

	t.Run("non-hex key does not match", func(t *testing.T) {
		broken, err := scheme.Reconstruct("00112233:not-hex")
		require.NoError(t, err)
		assert.False(t, broken.Verify(strongPassword))
	})

	t.Run("truncated key does not match", func(t *testing.T) {
		parts := strings.Split(cred.Export(), ":")
		truncated, err := scheme.Reconstruct(parts[0] + ":" + parts[1][:32])
		require.NoError(t, err)
		assert.False(t, truncated.Verify(strongPassword))
	})

	t.Run("mismatched params do not match", func(t *testing.T) {
		other := credential.NewScheme(credential.WithParams(credential.Params{N: 2048, R: 8, P: 1}))
		restored, err := other.Reconstruct(cred.Export())
		require.NoError(t, err)
		assert.False(t, restored.Verify(strongPassword))
	})

	t.Run("invalid params do not match", func(t *testing.T) {
		bad := credential.NewScheme(credential.WithParams(credential.Params{N: 0, R: 0, P: 0}))
		restored, err := bad.Reconstruct(cred.Export())
		require.NoError(t, err)
		assert.False(t, restored.Verify(strongPassword))
	})
}

func TestReconstruct(t *testing.T) {
	scheme := newScheme()

	t.Run("round trip verifies original plaintext", func(t *testing.T) {
		cred, err := scheme.Derive(strongPassword)
		require.NoError(t, err)

		restored, err := scheme.Reconstruct(cred.Export())
		require.NoError(t, err)
		assert.Equal(t, cred.Export(), restored.Export())
		assert.True(t, restored.Verify(strongPassword))
		assert.False(t, restored.Verify("WrongPassword123!"))
	})

	t.Run("does not apply the strength policy", func(t *testing.T) {
		lax := newScheme(credential.WithPolicy(credential.Policy{MinLength: 1}))
		weakCred, err := lax.Derive("abc")
		require.NoError(t, err)

		restored, err := scheme.Reconstruct(weakCred.Export())
		require.NoError(t, err)
		assert.True(t, restored.Verify("abc"))
	})

	invalid := []string{"no-colon-here", "a:b:c", "", ":", "abc:", ":abc", "a::b"}
	for _, input := range invalid {
		t.Run(fmt.Sprintf("rejects %q", input), func(t *testing.T) {
			cred, err := scheme.Reconstruct(input)
			assert.Nil(t, cred)
			require.Error(t, err)
			assert.ErrorIs(t, err, credential.ErrInvalidFormat)
			errutil.AssertErrorCode(t, err, "CREDENTIAL_INVALID_FORMAT")
		})
	}
}

func TestExport_IsStable(t *testing.T) {
	cred, err := newScheme().Derive(strongPassword)
	require.NoError(t, err)
	assert.Equal(t, cred.Export(), cred.Export())
}

func TestCredential_StringRedacts(t *testing.T) {
	cred, err := newScheme().Derive(strongPassword)
	require.NoError(t, err)

	key := strings.Split(cred.Export(), ":")[1]
	assert.NotContains(t, fmt.Sprintf("%v", cred), key)
	assert.NotContains(t, fmt.Sprintf("%#v", cred), key)
	assert.NotContains(t, fmt.Sprintf("%+v", cred), key)
}

func TestScheme_ConcurrentDerivations(t *testing.T) {
	scheme := newScheme()

	const workers = 8
	exports := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cred, err := scheme.Derive(strongPassword)
			if assert.NoError(t, err) {
				assert.True(t, cred.Verify(strongPassword))
				exports[i] = cred.Export()
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers)
	for _, e := range exports {
		seen[e] = struct{}{}
	}
	assert.Len(t, seen, workers)
}

func TestPackageDefaults(t *testing.T) {
	cred, err := credential.Derive(strongPassword)
	require.NoError(t, err)

	restored, err := credential.Reconstruct(cred.Export())
	require.NoError(t, err)
	assert.True(t, restored.Verify(strongPassword))

	_, err = credential.Derive("Pass1!")
	assert.ErrorIs(t, err, credential.ErrWeakSecret)
}
