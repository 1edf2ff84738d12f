// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

// Package httpapi exposes account registration and login over JSON/HTTP.
//
// Routes:
//
//	POST /api/user/register  201 {id, username, email, birthday}
//	POST /api/user/login     200 {id, username, email, birthday}
//
// Errors use {"statusCode", "message", "error"}. An unknown email and a wrong
// password share one 404 body. Accounts are not readable by id over HTTP;
// the user CLI covers administration.
package httpapi
