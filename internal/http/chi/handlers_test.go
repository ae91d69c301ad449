package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmem "github.com/chainpass/webhook-notify/audit/memory"
	"github.com/chainpass/webhook-notify/delivery"
	deliverymem "github.com/chainpass/webhook-notify/delivery/memory"
	"github.com/chainpass/webhook-notify/event"
	eventmem "github.com/chainpass/webhook-notify/event/memory"
	"github.com/chainpass/webhook-notify/partner"
	"github.com/chainpass/webhook-notify/receiver"
	"github.com/chainpass/webhook-notify/replay"
	replaymem "github.com/chainpass/webhook-notify/replay/memory"
	"github.com/chainpass/webhook-notify/signature"
)

const testOperatorToken = "op-secret-token"

type testEnv struct {
	mux    http.Handler
	events *event.Service
	queue  delivery.Repository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "partners.yaml")
	content := `partners:
  - id: acme-corp
    name: Acme Corp
    callback_url: https://hooks.acme.test/chainpass
    secret: acme-secret
  - id: initech
    name: Initech
    callback_url: https://initech.test/webhooks
    secret: initech-secret
    active: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	partners := partner.NewLoader()
	require.NoError(t, partners.Load(path))

	queue := deliverymem.NewRepository()
	eventRepo := eventmem.NewRepository()
	auditLog := auditmem.NewLogger()

	deliveryService := delivery.NewService(queue, delivery.DefaultMaxAttempts)
	eventService := event.NewService(eventRepo, partners, deliveryService)
	verifier := receiver.NewService(auditLog, signature.DefaultTolerance)
	replayService := replay.NewService(eventRepo, replaymem.NewRepository(), auditLog)

	mux := Handlers(context.Background(), Services{
		Events:        eventService,
		Deliveries:    deliveryService,
		Verifier:      verifier,
		Replays:       replayService,
		Partners:      partners,
		OperatorToken: testOperatorToken,
	})

	return &testEnv{
		mux:    mux,
		events: eventService,
		queue:  queue,
	}
}

func TestHealth(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestPostEvent(t *testing.T) {
	t.Run("records event and fans out to active partners", func(t *testing.T) {
		env := setupEnv(t)

		body := `{"type":"verification.completed","payload":{"verification_id":"v-123","status":"passed"}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)

		var resp eventResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.EventID)
		assert.Equal(t, "verification.completed", resp.Type)
		// initech is inactive, only acme-corp gets an entry
		assert.Len(t, resp.Enqueued, 1)

		entry, err := env.queue.Get(context.Background(), resp.Enqueued[0])
		require.NoError(t, err)
		assert.Equal(t, "acme-corp", entry.PartnerID)
		assert.Equal(t, delivery.Pending, entry.Status)
	})

	t.Run("rejects invalid event type", func(t *testing.T) {
		env := setupEnv(t)

		body := `{"type":"not a type!","payload":{"a":1}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects non-JSON body", func(t *testing.T) {
		env := setupEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString("not json"))
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetEvent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	evt, _, err := env.events.Record(ctx, "verification.completed", []byte(`{"ok":true}`))
	require.NoError(t, err)

	t.Run("returns stored event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/events/"+evt.ID, nil)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp eventDetailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, evt.ID, resp.EventID)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Payload))
	})

	t.Run("unknown event returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/events/nope", nil)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostVerify(t *testing.T) {
	payload := []byte(`{"verification_id":"v-9"}`)

	newVerifyRequest := func(body []byte, partnerID, sigHeader string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewBuffer(body))
		if partnerID != "" {
			req.Header.Set("X-Partner-ID", partnerID)
		}
		if sigHeader != "" {
			req.Header.Set(signature.HeaderName, sigHeader)
		}
		return req
	}

	t.Run("valid signature returns 200", func(t *testing.T) {
		env := setupEnv(t)

		header, err := signature.SignedHeader(payload, "acme-secret", time.Now().Unix())
		require.NoError(t, err)

		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, newVerifyRequest(payload, "acme-corp", header.String()))

		require.Equal(t, http.StatusOK, w.Code)
		var resp verifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Empty(t, resp.Error)
	})

	t.Run("malformed header returns 400", func(t *testing.T) {
		env := setupEnv(t)

		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, newVerifyRequest(payload, "acme-corp", "garbage"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp verifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("wrong secret returns 401", func(t *testing.T) {
		env := setupEnv(t)

		header, err := signature.SignedHeader(payload, "some-other-secret", time.Now().Unix())
		require.NoError(t, err)

		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, newVerifyRequest(payload, "acme-corp", header.String()))

		require.Equal(t, http.StatusUnauthorized, w.Code)
		var resp verifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
	})

	t.Run("stale timestamp returns 401", func(t *testing.T) {
		env := setupEnv(t)

		old := time.Now().Add(-10 * time.Minute).Unix()
		header, err := signature.SignedHeader(payload, "acme-secret", old)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, newVerifyRequest(payload, "acme-corp", header.String()))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing partner header returns 400", func(t *testing.T) {
		env := setupEnv(t)

		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, newVerifyRequest(payload, "", "t=1,v1=x"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown partner returns 404", func(t *testing.T) {
		env := setupEnv(t)

		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, newVerifyRequest(payload, "ghost", "t=1,v1=x"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetDelivery(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, entryIDs, err := env.events.Record(ctx, "verification.completed", []byte(`{"n":1}`))
	require.NoError(t, err)
	require.Len(t, entryIDs, 1)

	t.Run("returns entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/deliveries/"+entryIDs[0], nil)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, entryIDs[0], resp.ID)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "acme-corp", resp.PartnerID)
	})

	t.Run("unknown entry returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/deliveries/nope", nil)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetPartnerDeliveries(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := env.events.Record(ctx, "verification.completed", []byte(fmt.Sprintf(`{"n":%d}`, i)))
		require.NoError(t, err)
	}

	t.Run("lists entries for partner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/partners/acme-corp/deliveries", nil)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp []deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 3)
	})

	t.Run("respects limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/partners/acme-corp/deliveries?limit=2", nil)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp []deliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
	})

	t.Run("unknown partner returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/partners/ghost/deliveries", nil)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetPartners(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/partners", nil)
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []partnerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)

	// Signing secrets must never appear in the response
	assert.NotContains(t, w.Body.String(), "acme-secret")
	assert.NotContains(t, w.Body.String(), "initech-secret")
}

func TestPostReplay(t *testing.T) {
	t.Run("requires operator token", func(t *testing.T) {
		env := setupEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/replays", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("replays event to target", func(t *testing.T) {
		env := setupEnv(t)
		ctx := context.Background()

		evt, _, err := env.events.Record(ctx, "verification.completed", []byte(`{"replayed":true}`))
		require.NoError(t, err)

		var received []byte
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer target.Close()

		body, _ := json.Marshal(replayRequest{
			EventID:   evt.ID,
			TargetURL: target.URL,
			ActorID:   "ops-jordan",
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/replays", bytes.NewBuffer(body))
		req.Header.Set("Authorization", "Bearer "+testOperatorToken)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp replayResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, http.StatusOK, resp.ResponseStatus)
		assert.JSONEq(t, `{"replayed":true}`, string(received))

		// History is queryable afterwards
		histReq := httptest.NewRequest(http.MethodGet, "/v1/replays/"+evt.ID, nil)
		histReq.Header.Set("Authorization", "Bearer "+testOperatorToken)
		hw := httptest.NewRecorder()
		env.mux.ServeHTTP(hw, histReq)

		require.Equal(t, http.StatusOK, hw.Code)
		var history []replayHistoryResponse
		require.NoError(t, json.Unmarshal(hw.Body.Bytes(), &history))
		require.Len(t, history, 1)
		assert.Equal(t, "ops-jordan", history[0].ReplayedBy)
		assert.True(t, history[0].Success)
	})

	t.Run("unknown event returns 404", func(t *testing.T) {
		env := setupEnv(t)

		body, _ := json.Marshal(replayRequest{
			EventID:   "nope",
			TargetURL: "https://example.test/hook",
			ActorID:   "ops-jordan",
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/replays", bytes.NewBuffer(body))
		req.Header.Set("Authorization", "Bearer "+testOperatorToken)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing actor returns 400", func(t *testing.T) {
		env := setupEnv(t)

		body, _ := json.Marshal(replayRequest{
			EventID:   "evt",
			TargetURL: "https://example.test/hook",
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/replays", bytes.NewBuffer(body))
		req.Header.Set("Authorization", "Bearer "+testOperatorToken)
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
