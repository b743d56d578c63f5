package eventbus

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector собирает доставленные события
type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) first() *Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[0]
}

func TestMemoryBusDeliversByFilter(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()
	ctx := context.Background()

	var all, resets collector
	_, err := bus.Subscribe(ctx, Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(ctx, Filter{Types: []string{TypeSpawnerReset}}, resets.handle)
	require.NoError(t, err)

	for _, typ := range []string{TypeSpawnerDisabled, TypeSpawnerReset} {
		ev, err := NewEnvelope("test", typ, 5, map[string]int{"n": 1})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, ev))
	}

	assert.Eventually(t, func() bool { return all.len() == 2 && resets.len() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, TypeSpawnerReset, resets.first().EventType)
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()
	ctx := context.Background()

	var c collector
	sub, err := bus.Subscribe(ctx, Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEnvelope("test", TypeSpawnerDisabled, 5, nil)
	require.NoError(t, bus.Publish(ctx, ev))
	require.NoError(t, bus.Close())
	assert.Zero(t, c.len())
}

func TestMemoryBusAccountsEveryPublish(t *testing.T) {
	bus := NewMemoryBus(1)
	defer bus.Close()
	ctx := context.Background()

	block := make(chan struct{})
	_, err := bus.Subscribe(ctx, Filter{}, func(context.Context, *Envelope) { <-block })
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		ev, _ := NewEnvelope("test", TypeSpawnerDisabled, 0, i)
		require.NoError(t, bus.Publish(ctx, ev))
	}
	close(block)

	// Доставка асинхронная, поэтому проверяем только баланс опубликованных и отброшенных
	stats := bus.Metrics()
	assert.Equal(t, uint64(20), stats.Published+stats.Dropped)
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ev, _ := NewEnvelope("test", TypeSpawnerDisabled, 0, nil)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisherNotify(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{Sources: []string{"tweaks"}}, c.handle)
	require.NoError(t, err)

	pub := NewPublisher(bus, "tweaks")
	pub.Notify(spawner.Transition{
		Kind:        spawner.TransitionDisabled,
		Key:         spawner.Key{Dimension: resource.MustParse("minecraft:overworld"), Pos: vec.Vec3{X: 1, Y: 2, Z: 3}},
		SpawnedMobs: 25,
		Cap:         25,
	})

	require.Eventually(t, func() bool { return c.len() == 1 }, time.Second, 5*time.Millisecond)
	ev := c.first()
	assert.Equal(t, TypeSpawnerDisabled, ev.EventType)
	assert.NotEmpty(t, ev.ID)

	var p SpawnerPayload
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, "minecraft:overworld/1/2/3", p.Key)
	assert.Equal(t, 25, p.SpawnedMobs)
	assert.Equal(t, 2, p.Y)
}

func TestPublisherWithoutBus(t *testing.T) {
	var pub *Publisher
	assert.NotPanics(t, func() { pub.StackSizesApplied(1, 1) })
	assert.NotPanics(t, func() { NewPublisher(nil, "x").StackSizesApplied(1, 1) })
}

// stalledBus держит каждую публикацию, пока не закрыт release или не истёк контекст
type stalledBus struct {
	release chan struct{}
	calls   int64
}

func (b *stalledBus) Publish(ctx context.Context, _ *Envelope) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	atomic.AddInt64(&b.calls, 1)
	return nil
}

func (b *stalledBus) Subscribe(context.Context, Filter, Handler) (Subscription, error) {
	return nil, ErrClosed
}
func (b *stalledBus) Metrics() Stats { return Stats{} }
func (b *stalledBus) Close() error   { return nil }

func TestPublisherDoesNotBlockOnStalledBus(t *testing.T) {
	bus := &stalledBus{release: make(chan struct{})}
	pub := NewPublisher(bus, "tweaks")

	transition := spawner.Transition{
		Kind: spawner.TransitionDisabled,
		Key:  spawner.Key{Dimension: resource.MustParse("minecraft:overworld")},
	}
	start := time.Now()
	for i := 0; i < 10; i++ {
		pub.Notify(transition)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	close(bus.release)
	pub.Close()
	assert.Equal(t, int64(10), atomic.LoadInt64(&bus.calls))
	assert.Zero(t, pub.Dropped())
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	bus := &stalledBus{release: make(chan struct{})}
	pub := NewPublisher(bus, "tweaks")

	for i := 0; i < publishQueue+10; i++ {
		pub.StackSizesApplied(1, i)
	}
	assert.GreaterOrEqual(t, pub.Dropped(), uint64(9))

	close(bus.release)
	pub.Close()
	pub.Close()
	// После закрытия события молча отбрасываются
	assert.NotPanics(t, func() { pub.StackSizesApplied(1, 1) })
	assert.Equal(t, int64(publishQueue+10)-int64(pub.Dropped()), atomic.LoadInt64(&bus.calls))
}

func TestMetricsExporterCollect(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)

	for i := 0; i < 3; i++ {
		ev, _ := NewEnvelope("test", TypeStackSizesApplied, 5, i)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	me.collect()
	me.collect()

	assert.Equal(t, 3.0, testutil.ToFloat64(me.published))
}

func TestJetStreamBus(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}
	bus, err := NewJetStreamBus(url, "TWEAKS_TEST", time.Minute)
	if err != nil {
		t.Skipf("NATS недоступен: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var c collector
	_, err = bus.Subscribe(ctx, Filter{Types: []string{TypeSpawnerReset}}, c.handle)
	require.NoError(t, err)

	ev, _ := NewEnvelope("test", TypeSpawnerReset, 5, SpawnerPayload{Key: "k"})
	require.NoError(t, bus.Publish(ctx, ev))

	assert.Eventually(t, func() bool { return c.len() >= 1 }, 5*time.Second, 20*time.Millisecond)
}
