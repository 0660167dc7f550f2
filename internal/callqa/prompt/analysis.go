package prompt

import (
	"fmt"

	"callinsight_backend/internal/callqa/domain"
)

// Reference block delimiters. The reference text sits between them unchanged.
const (
	ReferenceBegin = "--- BEGIN REFERENCE DOCUMENT ---"
	ReferenceEnd   = "--- END REFERENCE DOCUMENT ---"
)

// Fragment names of the analysis instruction.
const (
	FragmentPersona   = "persona"
	FragmentDuties    = "duties"
	FragmentReference = "reference"
	FragmentRedaction = "redaction"
)

const analysisPersona = `You are a senior call-center quality assurance auditor. You review recorded customer calls for regulatory compliance, service quality and accuracy, and you report your findings as structured data only.`

var analysisDuties = fmt.Sprintf(`Perform the following duties for the attached call recording:
1. Transcribe the call with speaker diarization. Label each segment with its speaker (Agent or Customer) and keep segments in the order they were spoken.
2. Evaluate compliance. Grade each checklist category (for example Greeting, ID Verification, Disclosure, Closing) as PASS, FAIL or WARNING and give the evidence in details.
3. Identify domain terminology used in the call and list each term with a short definition and how it was used.
4. Suggest next best actions, highest priority first.
5. Assign an overall quality score as an integer from 0 to 100 and the overall customer sentiment as POSITIVE, NEUTRAL or NEGATIVE.
6. Extract the key fields into extractedInfo: customer name, product name, identity number, contribution amount, contact info and other details. Use an empty string when a value was not mentioned.
7. Compute talk-time ratios for the agent and the customer as percentages that add up to 100. Rate effectiveness with this band rule: Agent > %d%% talk time => %s; Agent < %d%% talk time => %s; otherwise %s.`,
	domain.AgentDominatedAbovePct, domain.EffectivenessAgentDominated,
	domain.CustomerDominatedBelowPct, domain.EffectivenessCustomerDominated,
	domain.EffectivenessBalanced,
)

const referenceRules = `Grade the call against the reference document above:
- Compliance items whose steps are absent from the reference document are graded FAIL.
- Product claims are checked against the reference for factual accuracy.`

var redactionDirective = fmt.Sprintf(`PII REDACTION IS MANDATORY AND NON-NEGOTIABLE.
Replace personal data everywhere it would appear in your output:
- Person names => %s
- Phone numbers => %s
- Account, policy and card numbers => %s
- E-mail addresses => %s
- Postal addresses => %s
This applies to the transcript, the summary, every checklist detail and every extractedInfo field. Write the placeholder itself in extractedInfo instead of the real value. Redaction takes precedence over extraction accuracy.`,
	domain.PlaceholderName,
	domain.PlaceholderPhone,
	domain.PlaceholderAccount,
	domain.PlaceholderEmail,
	domain.PlaceholderAddress,
)

func referenceBlock(ctx Context) string {
	return ReferenceBegin + "\n" + ctx.ReferenceText + "\n" + ReferenceEnd
}

// Analysis composes the instruction for the audio analysis task.
var Analysis = NewComposer(
	Fragment{Name: FragmentPersona, Include: always, Render: static(analysisPersona)},
	Fragment{Name: FragmentDuties, Include: always, Render: static(analysisDuties)},
	Fragment{
		Name:    FragmentReference,
		Include: Context.HasReference,
		Render: func(ctx Context) string {
			return referenceBlock(ctx) + "\n" + referenceRules
		},
	},
	Fragment{
		Name:    FragmentRedaction,
		Include: func(ctx Context) bool { return ctx.RedactPII },
		Render:  static(redactionDirective),
	},
)

// ForAnalysis composes the analysis instruction.
func ForAnalysis(referenceText string, redactPII bool) string {
	return Analysis.Compose(Context{
		Task:          TaskAnalysis,
		ReferenceText: referenceText,
		RedactPII:     redactPII,
	})
}
