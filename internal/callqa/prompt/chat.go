package prompt

import (
	"encoding/json"

	"callinsight_backend/internal/callqa/domain"
)

// NoContextMarker stands in for the analysis context when none is loaded.
const NoContextMarker = "No specific call context loaded yet."

// Fragment names of the chat instruction.
const (
	FragmentAssistantPersona = "assistant-persona"
	FragmentAnalysisContext  = "analysis-context"
	FragmentRedactionRespect = "redaction-respect"
)

const assistantPersona = `You are a helpful quality assurance assistant for call-center supervisors. Answer questions about the analyzed call, explain compliance grades and suggest coaching. Be concise and base your answers on the call context below.`

const redactionRespect = `If the context contains a redaction placeholder such as [NAME], [PHONE], [ACCOUNT], [EMAIL] or [ADDRESS], never attempt to reconstruct the real value. Refer to the placeholder instead.`

const chatReferenceRules = `Use the reference document above as the expected behaviour. When asked about the agent, contrast what the reference prescribes with what the agent actually did in the call.`

func analysisContext(ctx Context) string {
	if ctx.Analysis == nil {
		return "Call context:\n" + NoContextMarker
	}
	data, err := json.MarshalIndent(ctx.Analysis, "", "  ")
	if err != nil {
		return "Call context:\n" + NoContextMarker
	}
	return "Call context (analysis JSON):\n" + string(data)
}

// Chat composes the system instruction for the chat task. The running turn
// history is not part of it.
var Chat = NewComposer(
	Fragment{Name: FragmentAssistantPersona, Include: always, Render: static(assistantPersona)},
	Fragment{Name: FragmentAnalysisContext, Include: always, Render: analysisContext},
	Fragment{Name: FragmentRedactionRespect, Include: always, Render: static(redactionRespect)},
	Fragment{
		Name:    FragmentReference,
		Include: Context.HasReference,
		Render: func(ctx Context) string {
			return referenceBlock(ctx) + "\n" + chatReferenceRules
		},
	},
)

// ForChat composes the chat system instruction.
func ForChat(analysis *domain.CallAnalysis, referenceText string) string {
	return Chat.Compose(Context{
		Task:          TaskChat,
		ReferenceText: referenceText,
		Analysis:      analysis,
	})
}
