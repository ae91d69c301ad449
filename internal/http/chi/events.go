package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chainpass/webhook-notify/event"
)

/* HTTP layer DTOs for event intake
 * Separate from domain entities to avoid leaking internal structure
 */

// eventRequest represents an incoming business event
type eventRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// eventResponse represents the API response when recording an event
type eventResponse struct {
	EventID  string   `json:"event_id"`
	Type     string   `json:"type"`
	Enqueued []string `json:"enqueued"`
}

// eventDetailResponse represents a stored event
type eventDetailResponse struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// postEvent handles POST /v1/events
func postEvent(eventService event.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var er eventRequest
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		evt, entryIDs, err := eventService.Record(r.Context(), er.Type, er.Payload)
		if err != nil {
			if errors.Is(err, event.ErrInvalidType) || errors.Is(err, event.ErrInvalidPayload) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// 202: the event is recorded, deliveries happen asynchronously
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		response := eventResponse{
			EventID:  evt.ID,
			Type:     evt.Type,
			Enqueued: entryIDs,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getEvent handles GET /v1/events/{event_id}
func getEvent(eventService event.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "event_id")

		evt, err := eventService.Get(r.Context(), eventID)
		if err != nil {
			if errors.Is(err, event.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		result := eventDetailResponse{
			EventID:   evt.ID,
			Type:      evt.Type,
			Payload:   evt.Payload,
			CreatedAt: evt.CreatedAt,
		}
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
