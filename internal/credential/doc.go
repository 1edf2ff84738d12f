// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

// Package credential derives and verifies password credentials.
//
// A Credential is the salted scrypt hash of a secret. It is created either by
// deriving it from a plaintext (Scheme.Derive, which enforces the strength
// Policy first) or by reconstructing it from its stored form
// (Scheme.Reconstruct, which trusts previously validated material).
//
// # Stored form
//
// The stored form is "<salt_hex>:<key_hex>": a 16 byte random salt and a 64
// byte scrypt key, both hex encoded. The hex text of the salt is what is fed
// to scrypt, so credentials written by earlier deployments stay verifiable.
//
// Verify never returns an error. Malformed stored material simply does not
// match.
package credential
