package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/chainpass/webhook-notify/partner"
	"github.com/chainpass/webhook-notify/receiver"
	"github.com/chainpass/webhook-notify/signature"
)

// verifyResponse represents the verification outcome
type verifyResponse struct {
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	CurrentTime int64  `json:"current_time"`
}

/* postVerify handles POST /v1/verify. The request body is the exact
 * payload bytes as received on the partner's endpoint; the signature
 * header and partner ID travel in headers so the body is never
 * re-serialized before verification.
 */
func postVerify(verifier *receiver.Service, partners *partner.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partnerID := r.Header.Get("X-Partner-ID")
		if partnerID == "" {
			http.Error(w, "X-Partner-ID header is required", http.StatusBadRequest)
			return
		}

		sigHeader := r.Header.Get(signature.HeaderName)
		if sigHeader == "" {
			http.Error(w, fmt.Sprintf("%s header is required", signature.HeaderName), http.StatusBadRequest)
			return
		}

		p, err := partners.Get(partnerID)
		if err != nil {
			http.Error(w, fmt.Sprintf("partner not found: %s", partnerID), http.StatusNotFound)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result, err := verifier.Verify(r.Context(), payload, sigHeader, p.Secret)

		response := verifyResponse{
			Valid:       result.Valid,
			Error:       result.Error,
			Timestamp:   result.Timestamp,
			CurrentTime: result.CurrentTime,
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case err == nil:
			w.WriteHeader(http.StatusOK)
		case errors.Is(err, signature.ErrInvalidFormat):
			// Malformed header is a caller bug, not a rejected signature
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
