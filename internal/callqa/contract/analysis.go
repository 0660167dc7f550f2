package contract

import (
	"callinsight_backend/internal/callqa/domain"
)

// Options selects which optional sections the contract declares.
type Options struct {
	// Extensions adds genderProfile and agentPerformance.
	Extensions bool
}

// Contract is the single declaration of the CallAnalysis shape.
type Contract struct {
	root Field
	opts Options
}

// Analysis builds the CallAnalysis contract.
func Analysis(opts Options) *Contract {
	props := []Field{
		list("transcriptSegments", "Diarized transcript in chronological order.",
			object("", "",
				str("speaker", "Speaker label such as Agent or Customer."),
				str("text", "What the speaker said."),
			),
		),
		text("summary", "Concise summary of the call."),
		score("qualityScore", "Overall call quality from 0 to 100."),
		enum("sentiment", "Overall customer sentiment.", values(domain.Sentiments)...),
		list("nextBestActions", "Recommended follow-ups, highest priority first.",
			Field{Kind: String, Required: true},
		),
		list("complianceChecklist", "Graded compliance steps.",
			object("", "",
				str("category", "Checklist category, e.g. Greeting, ID Verification, Disclosure, Closing."),
				enum("status", "Grade for this step.", values(domain.ComplianceStatuses)...),
				str("details", "Evidence for the grade."),
			),
		),
		list("glossaryUsed", "Domain terms used in the call.",
			object("", "",
				str("term", "The term."),
				str("definition", "Short definition."),
				str("contextInCall", "How the term was used in this call."),
			),
		),
		object("extractedInfo", "Business fields extracted from the call.",
			str("customerName", "Customer name or a redaction placeholder."),
			str("productName", "Product discussed."),
			str("identityNumber", "Identity or policy number or a redaction placeholder."),
			str("contributionAmount", "Contribution or payment amount."),
			str("contactInfo", "Phone, e-mail or address or a redaction placeholder."),
			str("otherDetails", "Any other relevant detail."),
		),
		optional(object("conversationStats", "Talk-time split between the parties.",
			percent("agentTalkTimePct", "Share of talk time taken by the agent."),
			percent("customerTalkTimePct", "Share of talk time taken by the customer."),
			enum("effectivenessRating", "Rating derived from the talk-time split.", values(domain.EffectivenessRatings)...),
		)),
	}

	if opts.Extensions {
		props = append(props,
			optional(object("genderProfile", "Perceived gender of each party.",
				enum("agentGender", "Perceived agent gender.", values(domain.Genders)...),
				enum("customerGender", "Perceived customer gender.", values(domain.Genders)...),
			)),
			optional(object("agentPerformance", "Soft-skill scores for the agent.",
				score("empathyScore", "Empathy from 0 to 100."),
				score("clarityScore", "Clarity from 0 to 100."),
				score("resolutionScore", "Resolution from 0 to 100."),
				list("coachingTips", "Concrete coaching tips.", Field{Kind: String, Required: true}),
			)),
		)
	}

	return &Contract{
		root: object("CallAnalysis", "Quality assurance analysis of one recorded call.", props...),
		opts: opts,
	}
}

// Root returns the top-level object descriptor.
func (c *Contract) Root() Field {
	return c.root
}

// Extensions reports whether the extension sections are declared.
func (c *Contract) Extensions() bool {
	return c.opts.Extensions
}

func values[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
