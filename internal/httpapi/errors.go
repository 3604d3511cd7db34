package httpapi

import (
	"encoding/json"
	"net/http"

	"cardgend/pkg/types"
)

// writeJSONError writes the consistent JSON error payload. retryAfter is only
// included when non-zero.
func writeJSONError(w http.ResponseWriter, status int, code, details string, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:      code,
		Details:    details,
		RetryAfter: retryAfter,
	})
}
