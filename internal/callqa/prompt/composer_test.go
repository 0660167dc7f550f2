package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callinsight_backend/internal/callqa/domain"
)

var placeholders = []string{
	domain.PlaceholderName,
	domain.PlaceholderPhone,
	domain.PlaceholderAccount,
	domain.PlaceholderEmail,
	domain.PlaceholderAddress,
}

func TestAnalysisAlwaysCarriesPersonaAndDuties(t *testing.T) {
	got := ForAnalysis("", false)

	assert.Contains(t, got, "quality assurance auditor")
	for i := 1; i <= 7; i++ {
		assert.Contains(t, got, "\n"+string(rune('0'+i))+". ", "duty %d missing", i)
	}
	assert.Contains(t, got, "Agent > 70% talk time => AGENT_DOMINATED")
	assert.NotContains(t, got, ReferenceBegin)
	assert.NotContains(t, got, "PII REDACTION")
	assert.Equal(t, []string{FragmentPersona, FragmentDuties}, Analysis.Fragments(Context{}))
}

func TestAnalysisEmbedsReferenceVerbatim(t *testing.T) {
	ref := "Step 1: verify ID...\n  Step 2: read the disclosure  "

	got := ForAnalysis(ref, false)

	assert.Contains(t, got, ReferenceBegin+"\n"+ref+"\n"+ReferenceEnd)
	assert.Contains(t, got, "absent from the reference document are graded FAIL")
	assert.Contains(t, got, "checked against the reference for factual accuracy")
}

func TestAnalysisIgnoresBlankReference(t *testing.T) {
	got := ForAnalysis(" \n\t ", false)

	assert.NotContains(t, got, ReferenceBegin)
}

func TestRedactionAddsRulesWithoutRemovingDuties(t *testing.T) {
	for _, ref := range []string{"", "Disclosure script"} {
		plain := ForAnalysis(ref, false)
		redacted := ForAnalysis(ref, true)

		assert.True(t, strings.HasPrefix(redacted, plain), "redaction must only append")
		for _, p := range placeholders {
			assert.NotContains(t, plain, p)
			assert.Contains(t, redacted, p)
		}
		assert.Contains(t, redacted, "extractedInfo field")
	}
}

func TestAnalysisFragmentOrder(t *testing.T) {
	ctx := Context{ReferenceText: "script", RedactPII: true}
	assert.Equal(t,
		[]string{FragmentPersona, FragmentDuties, FragmentReference, FragmentRedaction},
		Analysis.Fragments(ctx),
	)

	got := Analysis.Compose(ctx)
	dutiesAt := strings.Index(got, "1. Transcribe")
	refAt := strings.Index(got, ReferenceBegin)
	redactAt := strings.Index(got, "PII REDACTION")
	assert.True(t, dutiesAt < refAt && refAt < redactAt, "want duties < reference < redaction")
}

func TestCompositionIsIdempotent(t *testing.T) {
	analysis := &domain.CallAnalysis{Summary: "Billing dispute", QualityScore: 40}

	assert.Equal(t, ForAnalysis("ref", true), ForAnalysis("ref", true))
	assert.Equal(t, ForChat(analysis, "ref"), ForChat(analysis, "ref"))
}

func TestChatWithoutContextUsesMarker(t *testing.T) {
	got := ForChat(nil, "")

	assert.Contains(t, got, NoContextMarker)
	assert.Contains(t, got, "never attempt to reconstruct the real value")
	assert.NotContains(t, got, ReferenceBegin)
	assert.Equal(t,
		[]string{FragmentAssistantPersona, FragmentAnalysisContext, FragmentRedactionRespect},
		Chat.Fragments(Context{Task: TaskChat}),
	)
}

func TestChatSerializesAnalysisAndReference(t *testing.T) {
	analysis := &domain.CallAnalysis{
		Summary:       "Customer asked about fees.",
		QualityScore:  64,
		Sentiment:     domain.SentimentNeutral,
		ExtractedInfo: domain.ExtractedInfo{CustomerName: domain.PlaceholderName},
	}

	got := ForChat(analysis, "Always quote the fee table.")

	assert.NotContains(t, got, NoContextMarker)
	assert.Contains(t, got, `"summary": "Customer asked about fees."`)
	assert.Contains(t, got, `"qualityScore": 64`)
	assert.Contains(t, got, `"customerName": "[NAME]"`)
	require.Contains(t, got, ReferenceBegin+"\nAlways quote the fee table.\n"+ReferenceEnd)
	assert.Contains(t, got, "contrast what the reference prescribes")

	redactAt := strings.Index(got, "never attempt to reconstruct")
	refAt := strings.Index(got, ReferenceBegin)
	assert.Less(t, redactAt, refAt)
}

func TestNilIncludeAlwaysRenders(t *testing.T) {
	c := NewComposer(
		Fragment{Name: "a", Render: static("A")},
		Fragment{Name: "b", Include: func(Context) bool { return false }, Render: static("B")},
		Fragment{Name: "c", Render: static("C")},
	)

	assert.Equal(t, "A\n\nC", c.Compose(Context{}))
	assert.Equal(t, []string{"a", "c"}, c.Fragments(Context{}))
}
