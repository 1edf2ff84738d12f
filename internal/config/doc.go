// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

// Package config loads warden configuration.
//
// Sources are layered, later wins: built-in defaults, the YAML file named by
// --config, command-line flags. DATABASE_URL overrides storage.database_url
// unless --database-url is given explicitly. The YAML file is checked against
// the JSON Schema returned by Schema before it is applied.
package config
