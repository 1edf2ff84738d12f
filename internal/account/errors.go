// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package account

import (
	"errors"

	"github.com/wardenhq/warden/internal/credential"
	"github.com/wardenhq/warden/internal/identity"
)

var (
	// ErrEmailTaken is returned by Register when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNotFound is the uniform outcome for unknown accounts and failed logins.
	ErrNotFound = errors.New("not found")
)

// IsClientError reports whether err was caused by the caller's input:
// an identity validation failure or a weak password.
func IsClientError(err error) bool {
	return errors.Is(err, identity.ErrInvalidIdentity) || errors.Is(err, credential.ErrWeakSecret)
}

// ClientReason returns the message to show a client for a client error.
func ClientReason(err error) (string, bool) {
	var verr *identity.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	var weak *credential.WeakSecretError
	if errors.As(err, &weak) {
		return weak.Error(), true
	}
	return "", false
}
