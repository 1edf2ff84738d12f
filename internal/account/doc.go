// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

// Package account orchestrates registration and login over the identity
// and credential packages.
//
// Login never tells an unknown email apart from a wrong password: both
// return ErrNotFound, and an unknown email still pays for one credential
// verification so the two cases take about the same time.
package account
