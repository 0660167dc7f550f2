// Package domain defines the call analysis record and chat message types
// exchanged between the dashboard and the analysis services.
package domain

import "time"

// Sentiment is the overall customer sentiment of a call.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// Sentiments lists every accepted sentiment value.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// ComplianceStatus grades one compliance checklist item.
type ComplianceStatus string

const (
	CompliancePass    ComplianceStatus = "PASS"
	ComplianceFail    ComplianceStatus = "FAIL"
	ComplianceWarning ComplianceStatus = "WARNING"
)

// ComplianceStatuses lists every accepted checklist status.
var ComplianceStatuses = []ComplianceStatus{CompliancePass, ComplianceFail, ComplianceWarning}

// EffectivenessRating summarizes the talk-time split.
type EffectivenessRating string

const (
	EffectivenessBalanced          EffectivenessRating = "BALANCED"
	EffectivenessAgentDominated    EffectivenessRating = "AGENT_DOMINATED"
	EffectivenessCustomerDominated EffectivenessRating = "CUSTOMER_DOMINATED"
)

// EffectivenessRatings lists every accepted effectiveness rating.
var EffectivenessRatings = []EffectivenessRating{
	EffectivenessBalanced,
	EffectivenessAgentDominated,
	EffectivenessCustomerDominated,
}

// Gender is the perceived gender of a speaker.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// Genders lists every accepted gender value.
var Genders = []Gender{GenderMale, GenderFemale, GenderUnknown}

// Talk-time bands used to derive EffectivenessRating.
const (
	AgentDominatedAbovePct    = 70
	CustomerDominatedBelowPct = 30
)

// RatingForAgentShare applies the talk-time band rule.
func RatingForAgentShare(agentPct float64) EffectivenessRating {
	switch {
	case agentPct > AgentDominatedAbovePct:
		return EffectivenessAgentDominated
	case agentPct < CustomerDominatedBelowPct:
		return EffectivenessCustomerDominated
	default:
		return EffectivenessBalanced
	}
}

// TranscriptSegment is one diarized utterance. Segments are kept in the order
// they were spoken.
type TranscriptSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ComplianceItem is one graded checklist entry. Category is an open label such
// as Greeting, ID Verification, Disclosure or Closing.
type ComplianceItem struct {
	Category string           `json:"category"`
	Status   ComplianceStatus `json:"status"`
	Details  string           `json:"details"`
}

// GlossaryTerm is a domain term detected in the call.
type GlossaryTerm struct {
	Term          string `json:"term"`
	Definition    string `json:"definition"`
	ContextInCall string `json:"contextInCall"`
}

// ExtractedInfo holds business fields pulled from the call. Any field may hold a
// redaction placeholder instead of a real value.
type ExtractedInfo struct {
	CustomerName       string `json:"customerName"`
	ProductName        string `json:"productName"`
	IdentityNumber     string `json:"identityNumber"`
	ContributionAmount string `json:"contributionAmount"`
	ContactInfo        string `json:"contactInfo"`
	OtherDetails       string `json:"otherDetails"`
}

// ConversationStats is the backend-reported talk-time split. The two
// percentages are expected, not guaranteed, to sum to 100.
type ConversationStats struct {
	AgentTalkTimePct    float64             `json:"agentTalkTimePct"`
	CustomerTalkTimePct float64             `json:"customerTalkTimePct"`
	EffectivenessRating EffectivenessRating `json:"effectivenessRating"`
}

// GenderProfile is the perceived gender of both parties.
type GenderProfile struct {
	AgentGender    Gender `json:"agentGender"`
	CustomerGender Gender `json:"customerGender"`
}

// AgentPerformance scores soft skills on a 0-100 scale.
type AgentPerformance struct {
	EmpathyScore    int      `json:"empathyScore"`
	ClarityScore    int      `json:"clarityScore"`
	ResolutionScore int      `json:"resolutionScore"`
	CoachingTips    []string `json:"coachingTips"`
}

// CallAnalysis is the immutable result of one analysis request.
type CallAnalysis struct {
	TranscriptSegments  []TranscriptSegment `json:"transcriptSegments"`
	Summary             string              `json:"summary"`
	QualityScore        int                 `json:"qualityScore"`
	Sentiment           Sentiment           `json:"sentiment"`
	NextBestActions     []string            `json:"nextBestActions"`
	ComplianceChecklist []ComplianceItem    `json:"complianceChecklist"`
	GlossaryUsed        []GlossaryTerm      `json:"glossaryUsed"`
	ExtractedInfo       ExtractedInfo       `json:"extractedInfo"`
	ConversationStats   *ConversationStats  `json:"conversationStats,omitempty"`
	GenderProfile       *GenderProfile      `json:"genderProfile,omitempty"`
	AgentPerformance    *AgentPerformance   `json:"agentPerformance,omitempty"`
}

// CompliancePassRate returns the share of checklist items graded PASS, in [0,1].
// An empty checklist yields 0.
func (a CallAnalysis) CompliancePassRate() float64 {
	if len(a.ComplianceChecklist) == 0 {
		return 0
	}
	passed := 0
	for _, item := range a.ComplianceChecklist {
		if item.Status == CompliancePass {
			passed++
		}
	}
	return float64(passed) / float64(len(a.ComplianceChecklist))
}

// FailedCompliance returns the categories graded FAIL, in checklist order.
func (a CallAnalysis) FailedCompliance() []string {
	var failed []string
	for _, item := range a.ComplianceChecklist {
		if item.Status == ComplianceFail {
			failed = append(failed, item.Category)
		}
	}
	return failed
}

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// Valid reports whether r is one of the two accepted roles.
func (r ChatRole) Valid() bool {
	return r == ChatRoleUser || r == ChatRoleModel
}

// ChatTurn is the part of a chat message the services consume.
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatMessage is one entry of the append-only conversation the dashboard keeps.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Redaction placeholders written in place of personal data.
const (
	PlaceholderName    = "[NAME]"
	PlaceholderPhone   = "[PHONE]"
	PlaceholderAccount = "[ACCOUNT]"
	PlaceholderEmail   = "[EMAIL]"
	PlaceholderAddress = "[ADDRESS]"
)
