// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package identity

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Rule names a construction invariant.
type Rule string

// Construction rules, in evaluation order. RuleCredential is checked last.
const (
	RuleUUID              Rule = "uuid"
	RuleDisplayNameLength Rule = "display_name_length"
	RuleEmail             Rule = "email"
	RuleBirthDate         Rule = "birth_date"
	RuleMinAge            Rule = "min_age"
	RuleCredential        Rule = "credential"
)

// Display name bounds, in runes.
const (
	MinDisplayNameLength = 3
	MaxDisplayNameLength = 50
)

// MinAge is the youngest age, in whole years, an identity may have.
const MinAge = 6

// Email limits, in bytes.
const (
	maxEmailLength       = 254
	maxLocalPartLength   = 64
	maxDomainLabelLength = 63
)

// birthDateLayouts are tried in order; the first that parses wins.
var birthDateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.RFC3339,
}

// attributes carries raw input and values derived by earlier rules.
type attributes struct {
	id          string
	displayName string
	email       string
	birthDate   string

	now  time.Time
	born time.Time
	age  int
}

type rule struct {
	name   Rule
	reason string
	check  func(a *attributes) bool
}

var rules = []rule{
	{RuleUUID, "id must be a uuid", checkUUID},
	{RuleDisplayNameLength, "username must be between 3 and 50 characters", checkDisplayName},
	{RuleEmail, "email must be a valid email", checkEmail},
	{RuleBirthDate, "birthday must be a date string", checkBirthDate},
	{RuleMinAge, "age must be a positive number and more than 6", checkAge},
}

func validate(a *attributes) *ValidationError {
	for _, r := range rules {
		if !r.check(a) {
			return &ValidationError{Rule: r.name, Reason: r.reason}
		}
	}
	return nil
}

// checkUUID accepts only the canonical 8-4-4-4-12 form.
func checkUUID(a *attributes) bool {
	if len(a.id) != 36 {
		return false
	}
	_, err := uuid.Parse(a.id)
	return err == nil
}

func checkDisplayName(a *attributes) bool {
	if !utf8.ValidString(a.displayName) {
		return false
	}
	n := utf8.RuneCountInString(a.displayName)
	return n >= MinDisplayNameLength && n <= MaxDisplayNameLength
}

// checkEmail requires a bare addr-spec whose domain is a fully qualified
// host name.
func checkEmail(a *attributes) bool {
	if a.email == "" || len(a.email) > maxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(a.email)
	if err != nil || addr.Name != "" || addr.Address != a.email {
		return false
	}
	at := strings.LastIndexByte(a.email, '@')
	if at <= 0 || at > maxLocalPartLength {
		return false
	}
	return isFQDN(a.email[at+1:])
}

// isFQDN reports whether s is a dotted host name with a TLD of at least two
// letters (or an "xn--" label).
func isFQDN(s string) bool {
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if !isHostLabel(l) {
			return false
		}
	}
	tld := labels[len(labels)-1]
	if strings.HasPrefix(strings.ToLower(tld), "xn--") {
		return true
	}
	if len(tld) < 2 {
		return false
	}
	for i := 0; i < len(tld); i++ {
		if !isASCIILetter(tld[i]) {
			return false
		}
	}
	return true
}

func isHostLabel(l string) bool {
	if l == "" || len(l) > maxDomainLabelLength || l[0] == '-' || l[len(l)-1] == '-' {
		return false
	}
	for i := 0; i < len(l); i++ {
		c := l[i]
		if !isASCIILetter(c) && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func checkBirthDate(a *attributes) bool {
	born, ok := parseBirthDate(a.birthDate)
	if !ok {
		return false
	}
	a.born = born
	a.age = ageOn(born, a.now)
	return true
}

func checkAge(a *attributes) bool {
	return a.age >= MinAge
}

func parseBirthDate(s string) (time.Time, bool) {
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ageOn returns whole years between born and now, counting the current year
// only once the birthday has been reached.
func ageOn(born, now time.Time) int {
	by, bm, bd := born.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}
