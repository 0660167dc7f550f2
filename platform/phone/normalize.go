// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"
	"slices"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number carries no international prefix.
const DefaultRegion = "US"

// candidateRegex finds digit runs that look like a dialable number: an optional
// leading +, then digits broken up by spaces, dots, dashes or parentheses.
var candidateRegex = regexp.MustCompile(`\+?\(?\d[\d\s().-]{5,}\d`)

// minDigits rejects short numeric fragments such as times or amounts.
const minDigits = 7

// Match is one phone number found in free text.
type Match struct {
	Start int
	End   int
	E164  string
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// SupportedRegion reports whether region is an ISO 3166 code the number
// metadata knows.
func SupportedRegion(region string) bool {
	return phonenumbers.GetSupportedRegions()[strings.ToUpper(region)]
}

// Find returns every substring of text that parses as a valid phone number for
// region, in order of appearance. Byte offsets index into text. A candidate
// written with separators only matches when they fall between the digit groups
// of the number's national or international format, so "2024-0001-17" is not
// read as (202) 400-0117.
func Find(text, region string) []Match {
	if region == "" {
		region = DefaultRegion
	}

	var matches []Match
	for _, loc := range candidateRegex.FindAllStringIndex(text, -1) {
		candidate := strings.TrimSpace(text[loc[0]:loc[1]])
		if countDigits(candidate) < minDigits {
			continue
		}

		number, err := phonenumbers.Parse(candidate, region)
		if err != nil || !phonenumbers.IsValidNumber(number) {
			continue
		}
		if !grouped(candidate, number) {
			continue
		}

		matches = append(matches, Match{
			Start: loc[0],
			End:   loc[1],
			E164:  phonenumbers.Format(number, phonenumbers.E164),
		})
	}
	return matches
}

func grouped(candidate string, number *phonenumbers.PhoneNumber) bool {
	digits, breaks := digitGroups(candidate)
	if len(breaks) == 0 {
		return true
	}
	for _, format := range []phonenumbers.PhoneNumberFormat{phonenumbers.NATIONAL, phonenumbers.INTERNATIONAL} {
		formatted, formattedBreaks := digitGroups(phonenumbers.Format(number, format))
		if formatted != digits {
			continue
		}
		if !slices.ContainsFunc(breaks, func(b int) bool { return !slices.Contains(formattedBreaks, b) }) {
			return true
		}
	}
	return false
}

// digitGroups returns the digits of s and the digit offsets at which a
// separator splits them.
func digitGroups(s string) (string, []int) {
	var b strings.Builder
	var breaks []int
	gap := false
	for _, r := range s {
		if r < '0' || r > '9' {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			breaks = append(breaks, b.Len())
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String(), breaks
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
