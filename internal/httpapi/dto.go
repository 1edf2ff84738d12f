// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package httpapi

import "github.com/wardenhq/warden/internal/identity"

// RegisterRequest is the body of POST /api/user/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Birthday string `json:"birthday"`
}

// LoginRequest is the body of POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is returned by register and login. It never carries the
// password or credential.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Birthday string `json:"birthday"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func newUserResponse(ident *identity.Identity) UserResponse {
	return UserResponse{
		ID:       ident.ID(),
		Username: ident.DisplayName(),
		Email:    ident.Email(),
		Birthday: ident.BirthDate(),
	}
}
