package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chainpass/webhook-notify/delivery"
	"github.com/chainpass/webhook-notify/partner"
)

// deliveryResponse represents a queue entry in the API
type deliveryResponse struct {
	ID             string     `json:"id"`
	EventID        string     `json:"event_id"`
	PartnerID      string     `json:"partner_id"`
	URL            string     `json:"url"`
	Status         string     `json:"status"`
	Attempts       int        `json:"attempts"`
	MaxAttempts    int        `json:"max_attempts"`
	LastAttemptAt  *time.Time `json:"last_attempt_at,omitempty"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ResponseStatus int        `json:"response_status,omitempty"`
	ResponseBody   string     `json:"response_body,omitempty"`
	ResponseTimeMS int64      `json:"response_time_ms,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// partnerResponse represents a configured partner. The signing secret
// never leaves the server.
type partnerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CallbackURL string `json:"callback_url"`
	Active      bool   `json:"active"`
}

func toDeliveryResponse(e delivery.Entry) deliveryResponse {
	return deliveryResponse{
		ID:             e.ID,
		EventID:        e.EventID,
		PartnerID:      e.PartnerID,
		URL:            e.URL,
		Status:         e.Status.String(),
		Attempts:       e.Attempts,
		MaxAttempts:    e.MaxAttempts,
		LastAttemptAt:  e.LastAttemptAt,
		NextRetryAt:    e.NextRetryAt,
		CompletedAt:    e.CompletedAt,
		ResponseStatus: e.ResponseStatus,
		ResponseBody:   e.ResponseBody,
		ResponseTimeMS: e.ResponseTimeMS,
		LastError:      e.LastError,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// getDelivery handles GET /v1/deliveries/{id}
func getDelivery(deliveryService delivery.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		entry, err := deliveryService.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, delivery.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toDeliveryResponse(entry)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// getPartnerDeliveries handles GET /v1/partners/{partner_id}/deliveries
func getPartnerDeliveries(deliveryService delivery.UseCase, partners *partner.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partnerID := chi.URLParam(r, "partner_id")
		if !partners.Exists(partnerID) {
			http.Error(w, fmt.Sprintf("partner not found: %s", partnerID), http.StatusNotFound)
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		entries, err := deliveryService.ListByPartner(r.Context(), partnerID, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		responses := make([]deliveryResponse, 0, len(entries))
		for _, e := range entries {
			responses = append(responses, toDeliveryResponse(e))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getPartners handles GET /v1/partners
func getPartners(partners *partner.Loader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all := partners.List()

		responses := make([]partnerResponse, 0, len(all))
		for _, p := range all {
			responses = append(responses, partnerResponse{
				ID:          p.ID,
				Name:        p.Name,
				CallbackURL: p.CallbackURL,
				Active:      p.Active,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
