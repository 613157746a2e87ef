package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds request bodies; uploads arrive base64-encoded inline.
const maxBodyBytes = 32 << 20

// failure is the structured result of an operation that did not happen.
type failure struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

// jsonError writes a {success:false, message} response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, failure{Message: message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(target)
}
