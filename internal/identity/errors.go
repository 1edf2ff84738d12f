// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package identity

import "errors"

// Sentinel errors for identity construction and persistence.
var (
	// ErrInvalidIdentity is matched by every ValidationError.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrNotFound is returned by repositories when no identity matches.
	ErrNotFound = errors.New("identity not found")

	// ErrEmailConflict is returned by Save when another identity owns the email.
	ErrEmailConflict = errors.New("email already in use")
)

// ValidationError reports the first rule an identity failed.
// Reason is safe to show to clients.
type ValidationError struct {
	Rule   Rule
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrInvalidIdentity) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidIdentity
}
