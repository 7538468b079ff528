package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the error envelope returned by every endpoint:
// {"error": <message or field-error map>}
type ErrorResponse struct {
	Error any `json:"error"`
}

// RespondWithError sends an error response with a plain message
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithFieldErrors sends a 400 response with a field-error map
func RespondWithFieldErrors(w http.ResponseWriter, fields map[string]string) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: fields})
}

// RespondWithValidationErrors sends a 400 response for validator errors
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	fields := make(map[string]string, len(errors))
	for _, e := range errors {
		fields[e.Field] = e.Message
	}
	RespondWithFieldErrors(w, fields)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
