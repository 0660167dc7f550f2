package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"callinsight_backend/internal/callqa/domain"
)

// MalformedError reports a reply that is not a single JSON value.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("reply is not valid JSON: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// ViolationError reports a JSON reply that breaks the contract.
type ViolationError struct {
	Violations []Violation
}

func (e *ViolationError) Error() string {
	if len(e.Violations) == 1 {
		return "reply violates the analysis contract: " + e.Violations[0].String()
	}
	return fmt.Sprintf("reply violates the analysis contract in %d places, first: %s",
		len(e.Violations), e.Violations[0].String())
}

// Parse decodes text, validates it against the contract and returns the typed
// record. Values outside their declared range are rejected, never clamped.
func (c *Contract) Parse(text string) (domain.CallAnalysis, error) {
	raw, err := decode(text)
	if err != nil {
		return domain.CallAnalysis{}, &MalformedError{Err: err}
	}

	if violations := c.Validate(raw); len(violations) > 0 {
		return domain.CallAnalysis{}, &ViolationError{Violations: violations}
	}

	var analysis domain.CallAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return domain.CallAnalysis{}, &MalformedError{Err: err}
	}

	if !c.opts.Extensions {
		analysis.GenderProfile = nil
		analysis.AgentPerformance = nil
	}
	return analysis, nil
}

func decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the JSON value")
	}
	return raw, nil
}
