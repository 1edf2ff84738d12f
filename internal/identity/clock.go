// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package identity

import "time"

// Clock supplies the current time for age and birthday checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process wall clock in local time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// FixedDate returns a FixedClock at noon UTC on the given day.
func FixedDate(year int, month time.Month, day int) FixedClock {
	return FixedClock(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}
