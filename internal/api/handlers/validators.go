package handlers

import (
	"net/http"
	"strings"

	"github.com/plataforma-eventos/server/internal/api/problem"
	"github.com/plataforma-eventos/server/internal/domain/ids"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateAndExtractULID extracts and validates a ULID from a request path
// parameter. If invalid, it writes the error response and returns false.
func ValidateAndExtractULID(w http.ResponseWriter, r *http.Request, paramName, env string) (string, bool) {
	ulidValue := strings.TrimSpace(pathParam(r, paramName))
	if ulidValue == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", FieldError{Field: paramName, Message: "missing"}, env)
		return "", false
	}
	if err := ids.ValidateULID(ulidValue); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", FieldError{Field: paramName, Message: "invalid ULID"}, env)
		return "", false
	}
	return ulidValue, true
}
