// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package credential

import (
	"strings"
	"unicode/utf8"
)

// Rule names a single strength requirement.
type Rule string

// Strength rules, in evaluation order.
const (
	RuleMinLength Rule = "min_length"
	RuleUppercase Rule = "uppercase"
	RuleLowercase Rule = "lowercase"
	RuleDigit     Rule = "digit"
	RuleSymbol    Rule = "symbol"
)

// Policy is the strength policy enforced on Derive.
// Lengths and counts are in runes.
type Policy struct {
	MinLength  int `koanf:"min_length" json:"min_length" jsonschema:"minimum=1,maximum=1024"`
	MinUpper   int `koanf:"min_upper" json:"min_upper" jsonschema:"minimum=0"`
	MinLower   int `koanf:"min_lower" json:"min_lower" jsonschema:"minimum=0"`
	MinDigits  int `koanf:"min_digits" json:"min_digits" jsonschema:"minimum=0"`
	MinSymbols int `koanf:"min_symbols" json:"min_symbols" jsonschema:"minimum=0"`
}

// DefaultPolicy requires 8 characters with at least one uppercase letter,
// one lowercase letter, one digit and one symbol.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:  8,
		MinUpper:   1,
		MinLower:   1,
		MinDigits:  1,
		MinSymbols: 1,
	}
}

// symbols are the runes counted by the symbol rule.
const symbols = "-#!$@£%^&*()_+|~=`{}[]:\";'<>?,./\\ "

type runeCounts struct {
	total, upper, lower, digits, symbols int
}

// countRunes classifies ASCII letters and digits and the runes in symbols.
// Any other rune, including non-ASCII letters and control characters, counts
// toward length only.
func countRunes(s string) runeCounts {
	c := runeCounts{total: utf8.RuneCountInString(s)}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			c.upper++
		case r >= 'a' && r <= 'z':
			c.lower++
		case r >= '0' && r <= '9':
			c.digits++
		case strings.ContainsRune(symbols, r):
			c.symbols++
		}
	}
	return c
}

// Check returns a *WeakSecretError naming the first rule plaintext fails,
// or nil. It does not mutate input.
func (p Policy) Check(plaintext string) error {
	c := countRunes(plaintext)

	rules := []struct {
		rule Rule
		ok   bool
	}{
		{RuleMinLength, c.total >= p.MinLength},
		{RuleUppercase, c.upper >= p.MinUpper},
		{RuleLowercase, c.lower >= p.MinLower},
		{RuleDigit, c.digits >= p.MinDigits},
		{RuleSymbol, c.symbols >= p.MinSymbols},
	}
	for _, r := range rules {
		if !r.ok {
			return &WeakSecretError{Rule: r.rule, Policy: p}
		}
	}
	return nil
}
