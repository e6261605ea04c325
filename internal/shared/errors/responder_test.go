package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOutOfStock = errors.New("out of stock")

func serve(t *testing.T, responder *ChainedResponder, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/orders/:id", func(c *gin.Context) {
		responder.RespondError(c, err)
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/7", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestRespondErrorUsesFirstMatchingMapper(t *testing.T) {
	responder := NewChainedResponder("",
		func(err error) (ProblemDetail, bool) {
			if errors.Is(err, errOutOfStock) {
				return ErrConflict.WithDetail(err.Error()).WithExtension("itemId", 12), true
			}
			return ProblemDetail{}, false
		},
		func(error) (ProblemDetail, bool) { return ErrNotFound, true },
	)

	rec, body := serve(t, responder, fmt.Errorf("reserve: %w", errOutOfStock))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, TypeConflict, body["type"])
	assert.Equal(t, "reserve: out of stock", body["detail"])
	assert.Equal(t, "/api/orders/7", body["instance"])
	assert.EqualValues(t, 12, body["itemId"])
	assert.NotContains(t, body, "extensions")
}

func TestRespondErrorHidesUnmappedErrors(t *testing.T) {
	responder := NewChainedResponder("https://shop.example/").
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec, body := serve(t, responder, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "https://shop.example"+TypeInternal, body["type"])
	assert.NotContains(t, body, "detail")
}

func TestRespondErrorPassesProblemsThrough(t *testing.T) {
	responder := NewChainedResponder("")

	rec, body := serve(t, responder, fmt.Errorf("wrapped: %w", ErrForbidden.WithDetail("not your order")))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not your order", body["detail"])
}

func TestExtensionsCannotOverrideStandardMembers(t *testing.T) {
	problem := ErrBadRequest.WithExtension("status", 200).WithExtension("field", "quantity")

	raw, err := json.Marshal(problem)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.EqualValues(t, http.StatusBadRequest, body["status"])
	assert.Equal(t, "quantity", body["field"])
	assert.Nil(t, ErrBadRequest.Extensions)
}
