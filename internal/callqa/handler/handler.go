// Package handler exposes the call QA services over HTTP.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"callinsight_backend/internal/callqa/agent"
	"callinsight_backend/internal/callqa/contract"
	"callinsight_backend/internal/callqa/domain"
	"callinsight_backend/internal/callqa/transport"
	"callinsight_backend/internal/documents"
	"callinsight_backend/platform/apperr"
	"callinsight_backend/platform/httpkit"
	"callinsight_backend/platform/logger"
	"callinsight_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	// formOverhead is the allowance for multipart framing and plain fields.
	formOverhead = 1 << 20
)

// Analyzer runs one analysis request.
type Analyzer interface {
	Run(ctx context.Context, req agent.AnalysisRequest) (domain.CallAnalysis, error)
}

// Chatter answers one chat turn.
type Chatter interface {
	Send(ctx context.Context, req agent.ChatRequest) (string, error)
}

// DocumentExtractor turns an uploaded document into plain text.
type DocumentExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Limits caps uploads and bounds generation requests.
type Limits struct {
	MaxAudioBytes     int64
	MaxDocumentBytes  int64
	MaxReferenceChars int
	// RequestTimeout bounds one backend call. Zero leaves the request context alone.
	RequestTimeout time.Duration
}

// Config wires a Handler.
type Config struct {
	Analyzer   Analyzer
	Chatter    Chatter
	Documents  DocumentExtractor
	Validator  *validator.Validator
	Limits     Limits
	Extensions bool
	Logger     *logger.Logger
}

// Handler serves the call QA endpoints.
type Handler struct {
	analyzer   Analyzer
	chatter    Chatter
	documents  DocumentExtractor
	val        *validator.Validator
	limits     Limits
	extensions bool
	log        *logger.Logger
	now        func() time.Time
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		analyzer:   cfg.Analyzer,
		chatter:    cfg.Chatter,
		documents:  cfg.Documents,
		val:        cfg.Validator,
		limits:     cfg.Limits,
		extensions: cfg.Extensions,
		log:        cfg.Logger,
		now:        time.Now,
	}
	if h.val == nil {
		h.val = validator.New()
	}
	if h.log == nil {
		h.log = logger.Discard()
	}
	return h
}

// RegisterRoutes mounts the call QA routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.Analyze)
	rg.POST("/chat", h.Chat)
	rg.POST("/documents/extract", h.ExtractDocument)
	rg.GET("/schema", h.Schema)
}

// Analyze handles POST /api/v1/callqa/analyses (multipart).
func (h *Handler) Analyze(c *gin.Context) {
	h.limitBody(c, h.limits.MaxAudioBytes+h.limits.MaxDocumentBytes)

	audioHeader, err := c.FormFile("audio")
	if err != nil {
		h.formError(c, err, "audio file is required")
		return
	}
	audio, err := readPart(audioHeader, h.limits.MaxAudioBytes, "audio")
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	redact, err := parseBool(c.PostForm("redactPii"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "redactPii must be true or false", nil)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	reference, err := h.reference(ctx, c)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	analysis, err := h.analyzer.Run(ctx, agent.AnalysisRequest{
		Audio:         audio,
		MIMEType:      audioMIMEType(audioHeader),
		RedactPII:     redact,
		ReferenceText: reference,
	})
	if err != nil {
		writeFailure(c, err)
		return
	}

	httpkit.OK(c, analysis)
}

// Chat handles POST /api/v1/callqa/chat.
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	reference, clipped := documents.Clip(req.ReferenceText, h.limits.MaxReferenceChars)
	if clipped {
		h.log.WithContext(c.Request.Context()).Warn("reference text truncated",
			"limit", h.limits.MaxReferenceChars)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	reply, err := h.chatter.Send(ctx, agent.ChatRequest{
		History:         req.Turns(),
		Message:         req.Message,
		AnalysisContext: req.Analysis,
		ReferenceText:   reference,
	})
	if err != nil {
		writeFailure(c, err)
		return
	}

	httpkit.OK(c, transport.ChatResponse{
		ID:        uuid.NewString(),
		Role:      domain.ChatRoleModel,
		Text:      reply,
		Timestamp: h.now().UTC(),
	})
}

// ExtractDocument handles POST /api/v1/callqa/documents/extract (multipart).
func (h *Handler) ExtractDocument(c *gin.Context) {
	h.limitBody(c, h.limits.MaxDocumentBytes)

	header, err := c.FormFile("file")
	if err != nil {
		h.formError(c, err, "file is required")
		return
	}
	data, err := readPart(header, h.limits.MaxDocumentBytes, "document")
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	text, err := h.documents.Extract(c.Request.Context(), header.Filename, data)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	text, clipped := documents.Clip(text, h.limits.MaxReferenceChars)

	httpkit.OK(c, transport.ExtractResponse{
		Text:       text,
		Characters: len([]rune(text)),
		Format:     string(documents.Detect(header.Filename, data)),
		Truncated:  clipped,
	})
}

// Schema handles GET /api/v1/callqa/schema?extensions=true|false.
func (h *Handler) Schema(c *gin.Context) {
	extensions := h.extensions
	if raw := c.Query("extensions"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "extensions must be true or false", nil)
			return
		}
		extensions = v
	}

	httpkit.OK(c, contract.Analysis(contract.Options{Extensions: extensions}).JSONSchema())
}

// reference joins the typed reference text with the text of an uploaded
// reference file, then clips the result.
func (h *Handler) reference(ctx context.Context, c *gin.Context) (string, error) {
	parts := make([]string, 0, 2)
	if text := c.PostForm("referenceText"); strings.TrimSpace(text) != "" {
		parts = append(parts, text)
	}

	header, err := c.FormFile("reference")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return "", apperr.BadRequest("could not read reference file")
	default:
		data, err := readPart(header, h.limits.MaxDocumentBytes, "reference document")
		if err != nil {
			return "", err
		}
		text, err := h.documents.Extract(ctx, header.Filename, data)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	reference, clipped := documents.Clip(strings.Join(parts, "\n\n"), h.limits.MaxReferenceChars)
	if clipped {
		h.log.WithContext(ctx).Warn("reference text truncated", "limit", h.limits.MaxReferenceChars)
	}
	return reference, nil
}

func (h *Handler) limitBody(c *gin.Context, payload int64) {
	if payload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, payload+formOverhead)
	}
}

func (h *Handler) formError(c *gin.Context, err error, missing string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		httpkit.HandleError(c, apperr.TooLarge("upload exceeds the size limit"))
		return
	}
	httpkit.Error(c, http.StatusBadRequest, missing, nil)
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.limits.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.limits.RequestTimeout)
}

func readPart(header *multipart.FileHeader, limit int64, what string) ([]byte, error) {
	if limit > 0 && header.Size > limit {
		return nil, apperr.TooLarge(fmt.Sprintf("%s exceeds %d bytes", what, limit))
	}
	f, err := header.Open()
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("could not read %s", what))
	}
	defer f.Close()

	r := io.Reader(f)
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("could not read %s", what))
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, apperr.TooLarge(fmt.Sprintf("%s exceeds %d bytes", what, limit))
	}
	return data, nil
}

// audioMIMEType returns the part's media type without parameters, or "" when
// the client sent none so the service default applies.
func audioMIMEType(header *multipart.FileHeader) string {
	raw := header.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil || mediaType == "application/octet-stream" {
		return ""
	}
	return mediaType
}

func parseBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
