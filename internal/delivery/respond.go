package delivery

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a failure kind onto the gateway's HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindPrecondition:
		return http.StatusBadRequest
	case apperr.KindAuthRejected:
		return http.StatusUnauthorized
	case apperr.KindCancelled:
		return http.StatusRequestTimeout
	case apperr.KindTransport, apperr.KindMalformedResponse,
		apperr.KindUploadRejected, apperr.KindConversionRejected, apperr.KindMissingArtifact:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
