package errors

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns a service error into a problem when it recognises it.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder writes problems and resolves errors through an ordered
// list of mappers. Errors no mapper recognises are logged and answered with
// a bare 500.
type ChainedResponder struct {
	baseURI string
	mappers []ErrorMapper
	logger  *slog.Logger
}

// NewChainedResponder prefixes relative problem types with baseURI when it
// is set.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{
		baseURI: strings.TrimSuffix(baseURI, "/"),
		mappers: mappers,
	}
}

// WithLogger replaces slog.Default for unmapped errors.
func (r *ChainedResponder) WithLogger(logger *slog.Logger) *ChainedResponder {
	r.logger = logger
	return r
}

func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && strings.HasPrefix(problem.Type, "/") {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(c.Request.Context(), "unhandled request error",
		slog.String("http.method", c.Request.Method),
		slog.String("http.path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	r.Respond(c, ErrInternal)
}
