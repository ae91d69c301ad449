package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"github.com/chainpass/webhook-notify/delivery"
	"github.com/chainpass/webhook-notify/event"
	"github.com/chainpass/webhook-notify/partner"
	"github.com/chainpass/webhook-notify/receiver"
	"github.com/chainpass/webhook-notify/replay"
)

// Services groups the use cases exposed over HTTP
type Services struct {
	Events     event.UseCase
	Deliveries delivery.UseCase
	Verifier   *receiver.Service
	Replays    replay.UseCase
	Partners   *partner.Loader

	// Metrics serves Prometheus-formatted metrics; nil disables the route
	Metrics http.Handler

	// OperatorToken guards the replay endpoints
	OperatorToken string
}

// Handlers sets up the notification API routes
func Handlers(ctx context.Context, svc Services) *chi.Mux {
	logger := httplog.NewLogger("webhook-notify", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", svc.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// Event intake and fan-out
		r.Method(http.MethodPost, "/events", postEvent(svc.Events))
		r.Method(http.MethodGet, "/events/{event_id}", getEvent(svc.Events))

		// Signature verification for integration testing
		r.Method(http.MethodPost, "/verify", postVerify(svc.Verifier, svc.Partners))

		// Delivery queue inspection
		r.Method(http.MethodGet, "/deliveries/{id}", getDelivery(svc.Deliveries))
		r.Method(http.MethodGet, "/partners", getPartners(svc.Partners))
		r.Method(http.MethodGet, "/partners/{partner_id}/deliveries", getPartnerDeliveries(svc.Deliveries, svc.Partners))

		// Operator replay tooling
		r.Group(func(r chi.Router) {
			r.Use(operatorAuth(svc.OperatorToken))
			r.Method(http.MethodPost, "/replays", postReplay(svc.Replays))
			r.Method(http.MethodGet, "/replays/{event_id}", getReplays(svc.Replays))
		})
	})

	return r
}

// operatorAuth requires a bearer token matching the configured
// operator token. Replays hit partner endpoints with production
// payloads, so the route is never left open.
func operatorAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.Error(w, "operator token not configured", http.StatusServiceUnavailable)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "invalid operator token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
