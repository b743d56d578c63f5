package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/eventbus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookRecorder struct {
	mu        sync.Mutex
	bodies    [][]byte
	sigs      []string
	failFirst int32
	status    int
	calls     int32
}

func (h *hookRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt32(&h.calls, 1)
	if n <= atomic.LoadInt32(&h.failFirst) {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if h.status != 0 {
		w.WriteHeader(h.status)
		return
	}
	body, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.bodies = append(h.bodies, body)
	h.sigs = append(h.sigs, r.Header.Get(SignatureHeader))
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (h *hookRecorder) received() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.bodies)
}

func envelope(t *testing.T, eventType string) *eventbus.Envelope {
	t.Helper()
	ev, err := eventbus.NewEnvelope("test", eventType, 5, eventbus.SpawnerPayload{Key: "minecraft:overworld/0/41/0", SpawnedMobs: 25, Cap: 25})
	require.NoError(t, err)
	return ev
}

func TestWebhookDeliveryIsSigned(t *testing.T) {
	rec := &hookRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	m := NewOutboundWebhookManager("srv-1", nil)
	defer m.Stop()
	m.AddWebhook(OutboundWebhook{Name: "ops", URL: srv.URL, Secret: "s3cr3t", Events: []string{eventbus.TypeSpawnerDisabled}})

	m.Dispatch(envelope(t, eventbus.TypeSpawnerReenabled))
	m.Dispatch(envelope(t, eventbus.TypeSpawnerDisabled))

	require.Eventually(t, func() bool { return rec.received() == 1 }, 2*time.Second, 10*time.Millisecond)
	rec.mu.Lock()
	body, sig := rec.bodies[0], rec.sigs[0]
	rec.mu.Unlock()

	assert.Equal(t, Sign(body, "s3cr3t"), sig)
	var event OutboundWebhookEvent
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, eventbus.TypeSpawnerDisabled, event.EventType)
	assert.Equal(t, "srv-1", event.ServerID)

	var payload eventbus.SpawnerPayload
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, 25, payload.Cap)

	require.Eventually(t, func() bool {
		wh, _ := m.GetWebhook(1)
		return wh.LastUsed != nil
	}, time.Second, 10*time.Millisecond)
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	rec := &hookRecorder{failFirst: 2}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewOutboundWebhookManager("srv-1", reg)
	m.initialBackoff = 5 * time.Millisecond
	defer m.Stop()
	m.AddWebhook(OutboundWebhook{Name: "ops", URL: srv.URL, Events: []string{"*"}, RetryCount: 3})

	m.Dispatch(envelope(t, eventbus.TypeSpawnerReset))

	require.Eventually(t, func() bool { return rec.received() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&rec.calls))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.deliveries.WithLabelValues("success")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWebhookClientErrorIsNotRetried(t *testing.T) {
	rec := &hookRecorder{status: http.StatusBadRequest}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	m := NewOutboundWebhookManager("srv-1", nil)
	m.initialBackoff = 5 * time.Millisecond
	defer m.Stop()
	m.AddWebhook(OutboundWebhook{Name: "ops", URL: srv.URL, Events: []string{"*"}, RetryCount: 5})

	m.Dispatch(envelope(t, eventbus.TypeSpawnerReset))

	require.Eventually(t, func() bool {
		wh, _ := m.GetWebhook(1)
		return wh.FailureCount == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rec.calls))
}

func TestWebhookManagerFollowsBus(t *testing.T) {
	rec := &hookRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	bus := eventbus.NewMemoryBus(16)
	defer bus.Close()

	m := NewOutboundWebhookManager("srv-1", nil)
	m.LoadConfig([]config.WebhookConfig{{Name: "ops", URL: srv.URL, Events: []string{"*"}, Timeout: 2 * time.Second}})
	require.NoError(t, m.Start(context.Background(), bus))

	require.NoError(t, bus.Publish(context.Background(), envelope(t, eventbus.TypeSpawnerDisabled)))
	require.Eventually(t, func() bool { return rec.received() == 1 }, 2*time.Second, 10*time.Millisecond)

	hooks := m.GetWebhooks()
	require.Len(t, hooks, 1)
	assert.Equal(t, 2, hooks[0].Timeout)

	m.Stop()
	m.Dispatch(envelope(t, eventbus.TypeSpawnerDisabled))
	m.Stop()
}
