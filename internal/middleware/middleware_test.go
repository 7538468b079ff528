package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRespondWithErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusNotFound, "Product not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Product not found", body["error"])
}

func TestRespondWithFieldErrorsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithFieldErrors(rec, map[string]string{
		"name":  "Product name cannot be empty.",
		"price": "Price cannot be negative.",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error map[string]string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Product name cannot be empty.", body.Error["name"])
	assert.Equal(t, "Price cannot be negative.", body.Error["price"])
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Title string   `json:"title" validate:"required"`
		Price *float64 `json:"price" validate:"required,gte=0"`
	}

	t.Run("valid body passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Books","price":10}`))
		var p payload
		assert.NoError(t, DecodeAndValidate(req, &p))
		assert.Equal(t, "Books", p.Title)
	})

	t.Run("malformed JSON is a decode error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
		var p payload
		err := DecodeAndValidate(req, &p)
		require.Error(t, err)
		assert.Empty(t, FormatValidationErrors(err))
	})

	t.Run("violations are collected per field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price":-5}`))
		var p payload
		err := DecodeAndValidate(req, &p)
		require.Error(t, err)

		formatted := FormatValidationErrors(err)
		require.Len(t, formatted, 2)

		byField := map[string]string{}
		for _, fe := range formatted {
			byField[fe.Field] = fe.Message
		}
		assert.Equal(t, "This field is required", byField["Title"])
		assert.Equal(t, "Value must be greater than or equal to 0", byField["Price"])
	})
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
}

func newRateLimitedHandler(t *testing.T, cfg RateLimitConfig) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return RateLimitMiddleware(client, cfg, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitMiddlewareAllowsWithinLimit(t *testing.T) {
	handler := newRateLimitedHandler(t, RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		KeyPrefix:         "catalog:ratelimit",
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/products/create/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitMiddlewareBlocksOverLimit(t *testing.T) {
	handler := newRateLimitedHandler(t, RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
		KeyPrefix:         "catalog:ratelimit",
	})

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/products/create/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	send("10.0.0.1:1234")
	send("10.0.0.1:1234")

	rec := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate limit exceeded", body["error"])

	// Other clients are counted separately
	other := send("10.0.0.2:1234")
	assert.Equal(t, http.StatusOK, other.Code)
}
