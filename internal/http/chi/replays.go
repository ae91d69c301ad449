package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chainpass/webhook-notify/event"
	"github.com/chainpass/webhook-notify/replay"
)

// replayRequest represents an operator-initiated replay
type replayRequest struct {
	EventID   string          `json:"event_id"`
	TargetURL string          `json:"target_url"`
	ActorID   string          `json:"actor_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// replayResponse represents the outcome of a replay
type replayResponse struct {
	Success        bool   `json:"success"`
	ResponseStatus int    `json:"response_status,omitempty"`
	ResponseBody   string `json:"response_body,omitempty"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// replayHistoryResponse represents one history row
type replayHistoryResponse struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	ReplayedBy     string    `json:"replayed_by"`
	TargetURL      string    `json:"target_url"`
	ResponseStatus int       `json:"response_status,omitempty"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ReplayedAt     time.Time `json:"replayed_at"`
}

// postReplay handles POST /v1/replays
func postReplay(replayService replay.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rr replayRequest
		if err := json.NewDecoder(r.Body).Decode(&rr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if rr.ActorID == "" {
			http.Error(w, "actor_id is required", http.StatusBadRequest)
			return
		}
		if rr.EventID == "" && len(rr.Payload) == 0 {
			http.Error(w, "event_id or payload is required", http.StatusBadRequest)
			return
		}
		if rr.TargetURL == "" {
			http.Error(w, "target_url is required", http.StatusBadRequest)
			return
		}

		result, err := replayService.Replay(r.Context(), rr.ActorID, rr.EventID, rr.TargetURL, rr.Payload)
		if err != nil {
			if errors.Is(err, event.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// A failed re-send is still a completed replay; the outcome
		// travels in the body, not the status code
		w.Header().Set("Content-Type", "application/json")
		response := replayResponse{
			Success:        result.Success,
			ResponseStatus: result.ResponseStatus,
			ResponseBody:   result.ResponseBody,
			ResponseTimeMS: result.ResponseTimeMS,
			ErrorMessage:   result.ErrorMessage,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getReplays handles GET /v1/replays/{event_id}
func getReplays(replayService replay.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "event_id")

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		history, err := replayService.ListByEvent(r.Context(), eventID, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		responses := make([]replayHistoryResponse, 0, len(history))
		for _, h := range history {
			responses = append(responses, replayHistoryResponse{
				ID:             h.ID,
				EventID:        h.EventID,
				ReplayedBy:     h.ReplayedBy,
				TargetURL:      h.TargetURL,
				ResponseStatus: h.ResponseStatus,
				ResponseTimeMS: h.ResponseTimeMS,
				Success:        h.Success,
				ErrorMessage:   h.ErrorMessage,
				ReplayedAt:     h.ReplayedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
