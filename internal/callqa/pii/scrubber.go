// Package pii is a local safeguard that runs over a finished analysis when
// redaction was requested. It catches e-mail addresses, card numbers and phone
// numbers the generation backend left in free text.
package pii

import (
	"regexp"
	"strings"

	"callinsight_backend/internal/callqa/domain"
	"callinsight_backend/platform/phone"
)

var (
	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// cardRegex matches 13 to 19 digits optionally grouped by spaces or dashes.
	cardRegex = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)
	// A digit run next to a currency marker is an amount, never a phone number.
	currencyBefore = regexp.MustCompile(`(?i)(?:\b(?:rp|idr|usd|eur|gbp|sgd|myr|inr|rs)\.?|[$€£¥])\s*$`)
	currencyAfter  = regexp.MustCompile(`(?i)^\s*(?:idr|usd|eur|gbp|sgd|myr|inr|rupiah|dollars?|euros?)\b`)
)

// Report counts the replacements made by one Scrub call.
type Report struct {
	Emails int
	Cards  int
	Phones int
}

// Total is the number of replacements.
func (r Report) Total() int {
	return r.Emails + r.Cards + r.Phones
}

// Scrubber replaces leaked personal data with redaction placeholders.
type Scrubber struct {
	region string
}

// NewScrubber returns a scrubber that parses national phone numbers for
// region (ISO 3166 code, e.g. "ID" for calls placed in Indonesia). Empty uses
// phone.DefaultRegion.
func NewScrubber(region string) *Scrubber {
	if region == "" {
		region = phone.DefaultRegion
	}
	return &Scrubber{region: region}
}

// Scrub returns a copy of a with transcript text, summary, checklist details
// and extractedInfo scrubbed. Scores, enums and speaker labels are untouched
// and a is not modified.
func (s *Scrubber) Scrub(a domain.CallAnalysis) (domain.CallAnalysis, Report) {
	var report Report
	out := a

	out.TranscriptSegments = make([]domain.TranscriptSegment, len(a.TranscriptSegments))
	for i, seg := range a.TranscriptSegments {
		seg.Text = s.text(seg.Text, &report)
		out.TranscriptSegments[i] = seg
	}

	out.Summary = s.text(a.Summary, &report)

	out.ComplianceChecklist = make([]domain.ComplianceItem, len(a.ComplianceChecklist))
	for i, item := range a.ComplianceChecklist {
		item.Details = s.text(item.Details, &report)
		out.ComplianceChecklist[i] = item
	}

	info := a.ExtractedInfo
	info.CustomerName = s.text(info.CustomerName, &report)
	info.IdentityNumber = s.text(info.IdentityNumber, &report)
	info.ContactInfo = s.text(info.ContactInfo, &report)
	info.OtherDetails = s.text(info.OtherDetails, &report)
	out.ExtractedInfo = info

	if a.TranscriptSegments == nil {
		out.TranscriptSegments = nil
	}
	if a.ComplianceChecklist == nil {
		out.ComplianceChecklist = nil
	}
	return out, report
}

// Text scrubs a single string.
func (s *Scrubber) Text(in string) (string, Report) {
	var report Report
	return s.text(in, &report), report
}

func (s *Scrubber) text(in string, report *Report) string {
	if in == "" {
		return in
	}

	out := emailRegex.ReplaceAllStringFunc(in, func(string) string {
		report.Emails++
		return domain.PlaceholderEmail
	})

	out = cardRegex.ReplaceAllStringFunc(out, func(match string) string {
		if !luhnValid(match) {
			return match
		}
		report.Cards++
		return domain.PlaceholderAccount
	})

	matches := phone.Find(out, s.region)
	if len(matches) == 0 {
		return out
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if currencyBefore.MatchString(out[:m.Start]) || currencyAfter.MatchString(out[m.End:]) {
			continue
		}
		b.WriteString(out[last:m.Start])
		b.WriteString(domain.PlaceholderPhone)
		last = m.End
		report.Phones++
	}
	b.WriteString(out[last:])
	return b.String()
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	digits := 0
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
		digits++
	}
	return digits >= 13 && sum%10 == 0
}
