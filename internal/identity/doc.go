// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

// Package identity provides the self-validating account entity.
//
// An Identity is built once by New, which checks its attributes against an
// ordered rule chain and reports the first violation. There are no setters;
// a change means constructing a new Identity. Age is derived at construction
// from the birth date and an injectable Clock.
package identity
