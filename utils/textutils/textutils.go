// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds small text helpers used to match user input and to
// phrase replies.
package textutils

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}

// Pluralise phrases a count: "no days", "1 day", "2 days".
func Pluralise(n int64, singular, plural string) string {
	switch n {
	case 0:
		return "no " + plural
	case 1:
		return "1 " + singular
	default:
		return FormatInt(n) + " " + plural
	}
}

// FormatDuration phrases d in its largest whole unit, from days down to seconds.
func FormatDuration(d time.Duration) string {
	const day = 24 * time.Hour

	switch {
	case d >= day:
		return Pluralise(int64(d/day), "day", "days")
	case d >= time.Hour:
		return Pluralise(int64(d/time.Hour), "hour", "hours")
	case d >= time.Minute:
		return Pluralise(int64(d/time.Minute), "minute", "minutes")
	default:
		return Pluralise(int64(d/time.Second), "second", "seconds")
	}
}
