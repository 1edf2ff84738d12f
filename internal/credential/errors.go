// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package credential

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrWeakSecret is matched by every WeakSecretError.
	ErrWeakSecret = errors.New("weak password")

	// ErrInvalidFormat is returned when a stored credential cannot be parsed.
	ErrInvalidFormat = errors.New("invalid hash format")
)

// WeakSecretError reports the first strength rule a plaintext failed.
type WeakSecretError struct {
	Rule   Rule
	Policy Policy
}

func (e *WeakSecretError) Error() string {
	return fmt.Sprintf(
		"password must be strong (at least %d characters, %d uppercase, %d lowercase, %d number, %d special character)",
		e.Policy.MinLength, e.Policy.MinUpper, e.Policy.MinLower, e.Policy.MinDigits, e.Policy.MinSymbols,
	)
}

// Is reports whether target is ErrWeakSecret.
func (e *WeakSecretError) Is(target error) bool {
	return target == ErrWeakSecret
}
