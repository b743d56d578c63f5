package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
)

// Типы событий
const (
	TypeSpawnerDisabled   = "SpawnerDisabled"
	TypeSpawnerReenabled  = "SpawnerReenabled"
	TypeSpawnerReset      = "SpawnerReset"
	TypeStackSizesApplied = "StackSizesApplied"
)

// SpawnerPayload - полезная нагрузка событий перехода спаунера
type SpawnerPayload struct {
	Key         string `json:"key"`
	Dimension   string `json:"dimension"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
	SpawnedMobs int    `json:"spawned_mobs"`
	Cap         int    `json:"cap"`
}

// StackSizesPayload - полезная нагрузка StackSizesApplied
type StackSizesPayload struct {
	Rules   int `json:"rules"`
	Changed int `json:"changed"`
}

const (
	publishTimeout = 2 * time.Second
	publishQueue   = 1024
)

// Publisher публикует доменные события из своей горутины: вызывающий код
// (тик сервера) только кладёт конверт в буферизованную очередь. При полной
// очереди событие отбрасывается, ошибки шины только логируются.
type Publisher struct {
	bus    EventBus
	source string

	mu      sync.RWMutex
	closed  bool
	queue   chan *Envelope
	done    chan struct{}
	dropped uint64
}

// NewPublisher создаёт публикатора. bus может быть nil - тогда события отбрасываются.
func NewPublisher(bus EventBus, source string) *Publisher {
	p := &Publisher{bus: bus, source: source}
	if bus != nil {
		p.queue = make(chan *Envelope, publishQueue)
		p.done = make(chan struct{})
		go p.loop()
	}
	return p
}

func (p *Publisher) loop() {
	defer close(p.done)
	for ev := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.bus.Publish(ctx, ev); err != nil {
			logging.Warn("EventBus: не удалось опубликовать %s: %v", ev.EventType, err)
		}
		cancel()
	}
}

func (p *Publisher) publish(eventType string, priority int, payload interface{}) {
	if p == nil || p.bus == nil {
		return
	}
	ev, err := NewEnvelope(p.source, eventType, priority, payload)
	if err != nil {
		logging.Warn("EventBus: %v", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- ev:
	default:
		if atomic.AddUint64(&p.dropped, 1)%100 == 1 {
			logging.Warn("EventBus: очередь публикации заполнена, %s отброшено", eventType)
		}
	}
}

// Dropped возвращает число событий, отброшенных из-за полной очереди
func (p *Publisher) Dropped() uint64 {
	if p == nil {
		return 0
	}
	return atomic.LoadUint64(&p.dropped)
}

// Close дожидается отправки событий из очереди. Повторный вызов безопасен.
func (p *Publisher) Close() {
	if p == nil || p.queue == nil {
		return
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}

// Notify реализует spawner.Notifier
func (p *Publisher) Notify(t spawner.Transition) {
	p.publish(t.Kind.String(), 3, SpawnerPayload{
		Key:         t.Key.String(),
		Dimension:   t.Key.Dimension.String(),
		X:           t.Key.Pos.X,
		Y:           t.Key.Pos.Y,
		Z:           t.Key.Pos.Z,
		SpawnedMobs: t.SpawnedMobs,
		Cap:         t.Cap,
	})
}

// StackSizesApplied публикует результат применения таблицы размеров стаков
func (p *Publisher) StackSizesApplied(rules, changed int) {
	p.publish(TypeStackSizesApplied, 5, StackSizesPayload{Rules: rules, Changed: changed})
}

var _ spawner.Notifier = (*Publisher)(nil)
