package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/eventbus"
	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// SignatureHeader - заголовок с HMAC-SHA256 подписью тела
const SignatureHeader = "X-Webhook-Signature"

// OutboundWebhook - подписчик на события твиков
type OutboundWebhook struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name" binding:"required"`
	URL          string     `json:"url" binding:"required,url"`
	Secret       string     `json:"secret,omitempty"`
	Events       []string   `json:"events" binding:"required"` // "*" - все события
	Active       bool       `json:"active"`
	Timeout      int        `json:"timeout"` // секунды
	RetryCount   int        `json:"retry_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	FailureCount int        `json:"failure_count"`
}

// OutboundWebhookEvent - тело запроса к webhook
type OutboundWebhookEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Timestamp int64           `json:"timestamp"`
	ServerID  string          `json:"server_id"`
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data"`
}

type delivery struct {
	hookID uint64
	event  OutboundWebhookEvent
}

// OutboundWebhookManager пересылает события шины во внешние webhook'и
type OutboundWebhookManager struct {
	mu       sync.RWMutex
	webhooks map[uint64]*OutboundWebhook
	nextID   uint64
	closed   bool

	queue          chan delivery
	wg             sync.WaitGroup
	sub            eventbus.Subscription
	httpClient     *http.Client
	serverID       string
	initialBackoff time.Duration

	deliveries *prometheus.CounterVec
	log        *logging.Logger
}

// NewOutboundWebhookManager запускает воркеры доставки. reg может быть nil.
func NewOutboundWebhookManager(serverID string, reg prometheus.Registerer) *OutboundWebhookManager {
	m := &OutboundWebhookManager{
		webhooks:       make(map[uint64]*OutboundWebhook),
		nextID:         1,
		queue:          make(chan delivery, 1000),
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		serverID:       serverID,
		initialBackoff: time.Second,
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webhook",
			Name:      "deliveries_total",
			Help:      "Доставки событий во внешние webhook'и.",
		}, []string{"result"}),
		log: logging.GetAPILogger(),
	}
	if reg != nil {
		reg.MustRegister(m.deliveries)
	}
	for i := 0; i < 4; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// LoadConfig добавляет webhook'и из конфигурации
func (m *OutboundWebhookManager) LoadConfig(hooks []config.WebhookConfig) {
	for _, h := range hooks {
		m.AddWebhook(OutboundWebhook{
			Name:       h.Name,
			URL:        h.URL,
			Secret:     h.Secret,
			Events:     h.Events,
			Timeout:    int(h.Timeout / time.Second),
			RetryCount: h.RetryCount,
		})
	}
}

// Start подписывает менеджер на все события шины
func (m *OutboundWebhookManager) Start(ctx context.Context, bus eventbus.EventBus) error {
	sub, err := bus.Subscribe(ctx, eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		m.Dispatch(ev)
	})
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()
	return nil
}

// Stop отписывается от шины и дожидается текущих доставок
func (m *OutboundWebhookManager) Stop() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
	close(m.queue)
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *OutboundWebhookManager) AddWebhook(webhook OutboundWebhook) OutboundWebhook {
	m.mu.Lock()
	defer m.mu.Unlock()

	webhook.ID = m.nextID
	m.nextID++
	webhook.CreatedAt = time.Now()
	webhook.Active = true
	if webhook.Timeout <= 0 {
		webhook.Timeout = 10
	}
	if webhook.RetryCount < 0 {
		webhook.RetryCount = 0
	}
	m.webhooks[webhook.ID] = &webhook
	return webhook
}

// GetWebhooks возвращает копии webhook'ов, отсортированные по ID
func (m *OutboundWebhookManager) GetWebhooks() []OutboundWebhook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]OutboundWebhook, 0, len(m.webhooks))
	for id := uint64(1); id < m.nextID; id++ {
		if wh, ok := m.webhooks[id]; ok {
			out = append(out, *wh)
		}
	}
	return out
}

func (m *OutboundWebhookManager) GetWebhook(id uint64) (OutboundWebhook, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wh, ok := m.webhooks[id]
	if !ok {
		return OutboundWebhook{}, false
	}
	return *wh, true
}

func (m *OutboundWebhookManager) DeleteWebhook(id uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.webhooks[id]; !ok {
		return false
	}
	delete(m.webhooks, id)
	return true
}

// Dispatch ставит событие в очередь для всех подписанных webhook'ов.
// При переполненной очереди событие пропускается.
func (m *OutboundWebhookManager) Dispatch(ev *eventbus.Envelope) {
	event := OutboundWebhookEvent{
		ID:        ev.ID,
		EventType: ev.EventType,
		Timestamp: ev.Timestamp.Unix(),
		ServerID:  m.serverID,
		Source:    ev.Source,
		Data:      json.RawMessage(ev.Payload),
	}
	if len(event.Data) == 0 {
		event.Data = json.RawMessage("null")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	for _, wh := range m.webhooks {
		if !wh.Active || !isSubscribed(wh, ev.EventType) {
			continue
		}
		select {
		case m.queue <- delivery{hookID: wh.ID, event: event}:
		default:
			m.log.Warn("Очередь webhook'ов переполнена, событие %s для %s пропущено", ev.EventType, wh.Name)
		}
	}
}

func isSubscribed(webhook *OutboundWebhook, eventType string) bool {
	for _, e := range webhook.Events {
		if e == eventType || e == "*" {
			return true
		}
	}
	return false
}

func (m *OutboundWebhookManager) worker() {
	defer m.wg.Done()
	for d := range m.queue {
		wh, ok := m.GetWebhook(d.hookID)
		if !ok {
			continue
		}
		err := m.send(wh, d.event)
		m.record(d.hookID, err)
	}
}

func (m *OutboundWebhookManager) record(id uint64, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.deliveries.WithLabelValues(result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	wh, ok := m.webhooks[id]
	if !ok {
		return
	}
	now := time.Now()
	wh.LastUsed = &now
	if err != nil {
		wh.FailureCount++
		m.log.Warn("Webhook %s: событие не доставлено: %v", wh.Name, err)
	}
}

// send доставляет событие с экспоненциальными повторами; 4xx не повторяется
func (m *OutboundWebhookManager) send(webhook OutboundWebhook, event OutboundWebhookEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	timeout := time.Duration(webhook.Timeout) * time.Second

	attempt := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "blockverse-tweaks/1.0")
		req.Header.Set("X-Event-Type", event.EventType)
		req.Header.Set("X-Server-ID", event.ServerID)
		if webhook.Secret != "" {
			req.Header.Set(SignatureHeader, Sign(body, webhook.Secret))
		}

		resp, err := m.httpClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("статус %d", resp.StatusCode))
		default:
			return fmt.Errorf("статус %d", resp.StatusCode)
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.initialBackoff
	policy.MaxElapsedTime = 0
	return backoff.Retry(attempt, backoff.WithMaxRetries(policy, uint64(webhook.RetryCount)))
}

// Sign возвращает подпись тела в формате "sha256=<hex>"
func Sign(data []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// EventTypes возвращает типы событий, на которые можно подписаться
func EventTypes() []string {
	return []string{
		eventbus.TypeSpawnerDisabled,
		eventbus.TypeSpawnerReenabled,
		eventbus.TypeSpawnerReset,
		eventbus.TypeStackSizesApplied,
	}
}
