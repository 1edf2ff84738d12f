// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package account

// Outcome labels passed to a Recorder.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalid       = "invalid"
	OutcomeWeakPassword  = "weak_password"
	OutcomeConflict      = "conflict"
	OutcomeNotFound      = "not_found"
	OutcomeWrongPassword = "wrong_password"
	OutcomeError         = "error"
)

// KDF operation labels.
const (
	OperationDerive = "derive"
	OperationVerify = "verify"
)

// Recorder receives account metrics.
type Recorder interface {
	ObserveRegistration(outcome string)
	ObserveLogin(outcome string)
	ObserveKDF(operation string, seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRegistration(string) {}
func (nopRecorder) ObserveLogin(string) {}
func (nopRecorder) ObserveKDF(string, float64) {}
