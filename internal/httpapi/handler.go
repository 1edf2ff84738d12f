// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/wardenhq/warden/internal/account"
	"github.com/wardenhq/warden/internal/identity"
	"github.com/wardenhq/warden/pkg/errutil"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// AccountService is the account operations the API serves.
type AccountService interface {
	Register(ctx context.Context, req account.RegisterRequest) (*identity.Identity, error)
	Login(ctx context.Context, req account.LoginRequest) (*identity.Identity, error)
}

// Recorder receives per-request metrics.
type Recorder interface {
	ObserveHTTPRequest(route string, status int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveHTTPRequest(string, int) {}

// Handler serves the account API.
type Handler struct {
	accounts AccountService
	logger   *slog.Logger
	recorder Recorder
	mux      *http.ServeMux
	chain    http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// NewHandler creates the API handler with routes and middleware installed.
func NewHandler(accounts AccountService, opts ...Option) *Handler {
	h := &Handler{
		accounts: accounts,
		logger:   slog.Default(),
		recorder: nopRecorder{},
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("POST /api/user/register", h.handleRegister)
	h.mux.HandleFunc("POST /api/user/login", h.handleLogin)

	h.chain = requestID(tracing(h.accessLog(h.mux)))
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain.ServeHTTP(w, r)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	ident, err := h.accounts.Register(r.Context(), account.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Birthday: req.Birthday,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, newUserResponse(ident))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	ident, err := h.accounts.Login(r.Context(), account.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newUserResponse(ident))
}

// decode reads a single JSON object into dst, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeStatus(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.writeStatus(w, r, http.StatusBadRequest, describeDecodeError(err))
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		h.writeStatus(w, r, http.StatusBadRequest, "request body must contain a single JSON object")
		return false
	}
	return true
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be a string", typeErr.Field)
	}
	if errors.Is(err, io.EOF) {
		return "request body is required"
	}
	return "malformed JSON body"
}

// writeError maps service errors to status codes. Internal details are
// logged, never returned.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if reason, ok := account.ClientReason(err); ok {
		h.writeStatus(w, r, http.StatusBadRequest, reason)
		return
	}
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		h.writeStatus(w, r, http.StatusConflict, account.ErrEmailTaken.Error())
	case errors.Is(err, account.ErrNotFound):
		h.writeStatus(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	default:
		errutil.LogError(r.Context(), h.logger, "request failed", err)
		h.writeStatus(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, r, status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write response", "status", status, "error", err)
	}
}
