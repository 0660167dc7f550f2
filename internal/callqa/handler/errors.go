package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"callinsight_backend/internal/callqa/agent"
	"callinsight_backend/internal/callqa/transport"
	"callinsight_backend/platform/apperr"
	"callinsight_backend/platform/httpkit"
)

// retryAfterSeconds is the hint sent with quota rejections.
const retryAfterSeconds = "30"

var failureMessages = map[agent.Kind]string{
	agent.KindTransport: "analysis backend unavailable",
	agent.KindQuota:     "generation quota exceeded, try again later",
	agent.KindEmpty:     "analysis backend returned no content",
	agent.KindMalformed: "analysis backend returned malformed JSON",
	agent.KindSchema:    "analysis did not match the expected schema",
	agent.KindChat:      "chat backend failed",
}

// writeFailure maps service errors to responses. Failures keep their kind in
// details so clients can tell transport, quota and contract problems apart.
func writeFailure(c *gin.Context, err error) {
	var f *agent.Failure
	if !errors.As(err, &f) {
		httpkit.HandleError(c, err)
		return
	}

	details := transport.FailureDetails{Kind: string(f.Kind), Cause: string(f.Cause)}
	if len(f.Violations) > 0 {
		details.Violations = f.Violations
	}

	kind := apperr.KindBadGateway
	if f.Kind == agent.KindQuota {
		kind = apperr.KindTooManyRequests
		c.Header("Retry-After", retryAfterSeconds)
	}

	httpkit.HandleError(c, apperr.Wrap(kind, failureMessages[f.Kind], err).WithDetails(details))
}
