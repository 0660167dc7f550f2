// Package agent runs the two generation requests of the call QA workflow:
// one structured analysis of a recording, and one chat turn about it.
package agent

import (
	"errors"
	"fmt"

	"callinsight_backend/internal/callqa/contract"
	"callinsight_backend/platform/ai"
)

// Kind classifies a failed request.
type Kind string

const (
	KindTransport Kind = "TransportError"
	KindQuota     Kind = "QuotaExceeded"
	KindEmpty     Kind = "EmptyResponse"
	KindMalformed Kind = "MalformedResponse"
	KindSchema    Kind = "SchemaViolation"
	KindChat      Kind = "ChatFailure"
)

// Failure is the error returned for every failed backend request.
type Failure struct {
	Kind Kind
	// Op is the operation that failed: analysis or chat.
	Op  string
	Err error
	// Violations lists contract breaches for KindSchema.
	Violations []contract.Violation
	// Cause is the underlying transport or quota kind of a KindChat failure.
	Cause Kind
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Op, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// KindOf returns the Kind of a *Failure in err's chain.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// backendKind separates quota rejections from every other backend error.
func backendKind(err error) Kind {
	if errors.Is(err, ai.ErrQuotaExceeded) {
		return KindQuota
	}
	return KindTransport
}

func contractFailure(op string, err error) *Failure {
	var verr *contract.ViolationError
	if errors.As(err, &verr) {
		return &Failure{Kind: KindSchema, Op: op, Err: err, Violations: verr.Violations}
	}
	return &Failure{Kind: KindMalformed, Op: op, Err: err}
}

// errorKind is the telemetry label for err.
func errorKind(err error) string {
	var f *Failure
	if !errors.As(err, &f) {
		return ""
	}
	if f.Kind == KindChat && f.Cause != "" {
		return string(f.Cause)
	}
	return string(f.Kind)
}
