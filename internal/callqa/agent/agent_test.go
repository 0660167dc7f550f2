package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callinsight_backend/internal/callqa/domain"
	"callinsight_backend/internal/callqa/prompt"
	internalevents "callinsight_backend/internal/events"
	"callinsight_backend/internal/telemetry"
	"callinsight_backend/platform/ai"
	"callinsight_backend/platform/apperr"
	"callinsight_backend/platform/events"
	"callinsight_backend/platform/logger"
)

type fakeAnalysisBackend struct {
	reply ai.Reply
	err   error
	calls int
	got   ai.AudioPrompt
}

func (f *fakeAnalysisBackend) GenerateAnalysis(_ context.Context, p ai.AudioPrompt) (ai.Reply, error) {
	f.calls++
	f.got = p
	return f.reply, f.err
}

type fakeChatBackend struct {
	reply ai.Reply
	err   error
	calls int
	got   ai.ChatPrompt
}

func (f *fakeChatBackend) Chat(_ context.Context, p ai.ChatPrompt) (ai.Reply, error) {
	f.calls++
	f.got = p
	return f.reply, f.err
}

type recordingSink struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *recordingSink) Log(e telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) only(t *testing.T) telemetry.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.events, 1, "exactly one telemetry event per request")
	return r.events[0]
}

type recordingPublisher struct {
	published []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) {
	r.published = append(r.published, e)
}

func validReply(t *testing.T, edit func(m map[string]any)) string {
	t.Helper()
	m := map[string]any{
		"transcriptSegments": []any{
			map[string]any{"speaker": "Agent", "text": "Thanks for calling, how can I help?"},
			map[string]any{"speaker": "Customer", "text": "I need to update my beneficiary."},
		},
		"summary":         "Customer updated a beneficiary.",
		"qualityScore":    76,
		"sentiment":       "POSITIVE",
		"nextBestActions": []any{"Send confirmation"},
		"complianceChecklist": []any{
			map[string]any{"category": "Greeting", "status": "PASS", "details": "Friendly greeting."},
			map[string]any{"category": "Disclosure", "status": "FAIL", "details": "Recording notice skipped."},
		},
		"glossaryUsed": []any{},
		"extractedInfo": map[string]any{
			"customerName": "[NAME]", "productName": "Life Cover", "identityNumber": "[ACCOUNT]",
			"contributionAmount": "", "contactInfo": "[PHONE]", "otherDetails": "",
		},
		"conversationStats": map[string]any{
			"agentTalkTimePct": 60, "customerTalkTimePct": 40, "effectivenessRating": "BALANCED",
		},
	}
	if edit != nil {
		edit(m)
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

func newAnalysis(backend AnalysisBackend, sink TelemetrySink, pub Publisher, log *logger.Logger) *AnalysisService {
	return NewAnalysisService(AnalysisConfig{
		Backend:   backend,
		Model:     "gemini-test",
		Telemetry: sink,
		Events:    pub,
		Logger:    log,
	})
}

func TestRunReturnsValidatedAnalysis(t *testing.T) {
	backend := &fakeAnalysisBackend{reply: ai.Reply{Text: validReply(t, nil), Model: "gemini-2.5-flash"}}
	sink := &recordingSink{}
	pub := &recordingPublisher{}
	svc := newAnalysis(backend, sink, pub, nil)

	got, err := svc.Run(context.Background(), AnalysisRequest{Audio: []byte("webm-bytes")})
	require.NoError(t, err)

	assert.Equal(t, 76, got.QualityScore)
	assert.Equal(t, domain.SentimentPositive, got.Sentiment)
	assert.Equal(t, "Agent", got.TranscriptSegments[0].Speaker)

	assert.Equal(t, DefaultAudioMIMEType, backend.got.MIMEType)
	assert.NotNil(t, backend.got.Schema)
	assert.Equal(t, prompt.ForAnalysis("", false), backend.got.Instruction)

	event := sink.only(t)
	assert.Equal(t, telemetry.StatusSuccess, event.Status)
	assert.Equal(t, "gemini-2.5-flash", event.Model)
	assert.Equal(t, telemetry.OperationAnalysis, event.Operation)
	require.NotNil(t, event.QualityScore)
	assert.Equal(t, 76, *event.QualityScore)
	assert.Equal(t, "POSITIVE", event.Sentiment)
	require.NotNil(t, event.CompliancePassRate)
	assert.Equal(t, 0.5, *event.CompliancePassRate)
	assert.Positive(t, event.TokenEstimateIn)
	assert.Positive(t, event.TokenEstimateOut)

	require.Len(t, pub.published, 1)
	analyzed, ok := pub.published[0].(internalevents.CallAnalyzed)
	require.True(t, ok)
	assert.Equal(t, []string{"Disclosure"}, analyzed.FailedCompliance)
}

func TestRunOutOfRangeScoreIsSchemaViolation(t *testing.T) {
	backend := &fakeAnalysisBackend{reply: ai.Reply{Text: validReply(t, func(m map[string]any) {
		m["qualityScore"] = 105
	})}}
	sink := &recordingSink{}
	pub := &recordingPublisher{}
	svc := newAnalysis(backend, sink, pub, nil)

	_, err := svc.Run(context.Background(), AnalysisRequest{Audio: []byte("a"), RedactPII: true})

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, KindSchema, failure.Kind)
	require.NotEmpty(t, failure.Violations)
	assert.Equal(t, "$.qualityScore", failure.Violations[0].Path)

	event := sink.only(t)
	assert.Equal(t, telemetry.StatusError, event.Status)
	assert.Equal(t, "SchemaViolation", event.ErrorKind)
	assert.Nil(t, event.QualityScore)
	assert.Empty(t, pub.published)
}

func TestRunEmbedsReferenceTextVerbatim(t *testing.T) {
	backend := &fakeAnalysisBackend{reply: ai.Reply{Text: validReply(t, nil)}}
	svc := newAnalysis(backend, nil, nil, nil)
	ref := "Step 1: verify ID..."

	_, err := svc.Run(context.Background(), AnalysisRequest{Audio: []byte("a"), ReferenceText: ref})
	require.NoError(t, err)

	assert.Contains(t, backend.got.Instruction, prompt.ReferenceBegin+"\n"+ref+"\n"+prompt.ReferenceEnd)
	assert.NotContains(t, backend.got.Instruction, domain.PlaceholderPhone)
}

func TestRunFailureKinds(t *testing.T) {
	cases := []struct {
		name    string
		backend *fakeAnalysisBackend
		want    Kind
	}{
		{"empty body", &fakeAnalysisBackend{reply: ai.Reply{Text: ""}}, KindEmpty},
		{"whitespace body", &fakeAnalysisBackend{reply: ai.Reply{Text: " \n "}}, KindEmpty},
		{"not json", &fakeAnalysisBackend{reply: ai.Reply{Text: "Sorry, I cannot help."}}, KindMalformed},
		{"enum mismatch", &fakeAnalysisBackend{reply: ai.Reply{Text: validReply(t, func(m map[string]any) {
			m["sentiment"] = "MIXED"
		})}}, KindSchema},
		{"quota", &fakeAnalysisBackend{err: fmt.Errorf("%w: 429", ai.ErrQuotaExceeded)}, KindQuota},
		{"transport", &fakeAnalysisBackend{err: errors.New("dial tcp: connection refused")}, KindTransport},
		{"deadline", &fakeAnalysisBackend{err: context.DeadlineExceeded}, KindTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			svc := newAnalysis(tc.backend, sink, nil, nil)

			got, err := svc.Run(context.Background(), AnalysisRequest{Audio: []byte("a")})
			require.Error(t, err)

			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.want, kind)
			assert.Equal(t, domain.CallAnalysis{}, got)
			assert.Equal(t, string(tc.want), sink.only(t).ErrorKind)
			assert.Equal(t, 1, tc.backend.calls, "no retries")
		})
	}
}

func TestRunRejectsEmptyAudio(t *testing.T) {
	backend := &fakeAnalysisBackend{}
	svc := newAnalysis(backend, nil, nil, nil)

	_, err := svc.Run(context.Background(), AnalysisRequest{})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 0, backend.calls)
}

func TestRunRedactionSafeguardScrubsLeaks(t *testing.T) {
	backend := &fakeAnalysisBackend{reply: ai.Reply{Text: validReply(t, func(m map[string]any) {
		m["summary"] = "Customer (jane@example.com) asked for a callback."
		m["extractedInfo"].(map[string]any)["contactInfo"] = "jane@example.com"
	})}}
	svc := newAnalysis(backend, nil, nil, nil)

	redacted, err := svc.Run(context.Background(), AnalysisRequest{Audio: []byte("a"), RedactPII: true})
	require.NoError(t, err)
	assert.Equal(t, "Customer ([EMAIL]) asked for a callback.", redacted.Summary)
	assert.Equal(t, domain.PlaceholderEmail, redacted.ExtractedInfo.ContactInfo)

	plain, err := svc.Run(context.Background(), AnalysisRequest{Audio: []byte("a")})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", plain.ExtractedInfo.ContactInfo, "no scrubbing without redaction")
}

func TestRunTalkTimeMismatchIsAdvisory(t *testing.T) {
	var buf bytes.Buffer
	backend := &fakeAnalysisBackend{reply: ai.Reply{Text: validReply(t, func(m map[string]any) {
		m["conversationStats"] = map[string]any{
			"agentTalkTimePct": 80, "customerTalkTimePct": 70, "effectivenessRating": "AGENT_DOMINATED",
		}
	})}}
	svc := newAnalysis(backend, nil, nil, logger.NewWithWriter("production", &buf))

	got, err := svc.Run(context.Background(), AnalysisRequest{Audio: []byte("a")})
	require.NoError(t, err)

	require.NotNil(t, got.ConversationStats)
	assert.Equal(t, 80.0, got.ConversationStats.AgentTalkTimePct)
	assert.Equal(t, 70.0, got.ConversationStats.CustomerTalkTimePct)
	assert.Contains(t, buf.String(), "talk-time shares do not sum to 100")
}

func newChat(backend ChatBackend, sink TelemetrySink) *ChatService {
	return NewChatService(ChatConfig{Backend: backend, Model: "gemini-test", Telemetry: sink})
}

func TestSendWithoutContextUsesMarker(t *testing.T) {
	backend := &fakeChatBackend{reply: ai.Reply{Text: "Hi! Load a call to get started."}}
	svc := newChat(backend, nil)

	reply, err := svc.Send(context.Background(), ChatRequest{Message: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, "Hi! Load a call to get started.", reply)
	assert.Contains(t, backend.got.SystemInstruction, prompt.NoContextMarker)
	assert.Empty(t, backend.got.History)
	assert.Equal(t, "Hello", backend.got.Message)
}

func TestSendReplaysHistoryInOrder(t *testing.T) {
	backend := &fakeChatBackend{reply: ai.Reply{Text: "Disclosure was skipped."}}
	sink := &recordingSink{}
	svc := newChat(backend, sink)
	analysis := &domain.CallAnalysis{Summary: "Beneficiary update", QualityScore: 76}

	_, err := svc.Send(context.Background(), ChatRequest{
		History: []domain.ChatTurn{
			{Role: domain.ChatRoleUser, Text: "What went wrong?"},
			{Role: domain.ChatRoleModel, Text: "The disclosure step."},
			{Role: domain.ChatRoleUser, Text: "Which one?"},
		},
		Message:         "Quote the script line.",
		AnalysisContext: analysis,
		ReferenceText:   "Read the recording notice.",
	})
	require.NoError(t, err)

	assert.Equal(t, []ai.Turn{
		{Role: ai.RoleUser, Text: "What went wrong?"},
		{Role: ai.RoleModel, Text: "The disclosure step."},
		{Role: ai.RoleUser, Text: "Which one?"},
	}, backend.got.History)
	assert.Equal(t, "Quote the script line.", backend.got.Message)
	assert.Contains(t, backend.got.SystemInstruction, "Beneficiary update")
	assert.Contains(t, backend.got.SystemInstruction, "Read the recording notice.")
	assert.NotContains(t, backend.got.SystemInstruction, prompt.NoContextMarker)

	event := sink.only(t)
	assert.Equal(t, telemetry.OperationChat, event.Operation)
	assert.Equal(t, telemetry.StatusSuccess, event.Status)
	assert.Equal(t, "gemini-test", event.Model)
}

func TestSendEmptySuccessReturnsFallback(t *testing.T) {
	svc := newChat(&fakeChatBackend{reply: ai.Reply{Text: "  "}}, nil)

	reply, err := svc.Send(context.Background(), ChatRequest{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)
}

func TestSendBackendErrorIsChatFailure(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		cause Kind
	}{
		{"quota", fmt.Errorf("%w: rate limited", ai.ErrQuotaExceeded), KindQuota},
		{"transport", errors.New("connection reset by peer"), KindTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			svc := newChat(&fakeChatBackend{err: tc.err}, sink)

			reply, err := svc.Send(context.Background(), ChatRequest{Message: "Hello"})
			assert.Empty(t, reply)

			var failure *Failure
			require.True(t, errors.As(err, &failure))
			assert.Equal(t, KindChat, failure.Kind)
			assert.Equal(t, tc.cause, failure.Cause)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, string(tc.cause), sink.only(t).ErrorKind)
		})
	}
}

func TestSendValidatesInput(t *testing.T) {
	backend := &fakeChatBackend{}
	svc := newChat(backend, nil)

	_, err := svc.Send(context.Background(), ChatRequest{Message: "   "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Send(context.Background(), ChatRequest{
		History: []domain.ChatTurn{{Role: "system", Text: "x"}},
		Message: "Hello",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.True(t, strings.Contains(err.Error(), "history[0]"))
	assert.Equal(t, 0, backend.calls)
}
