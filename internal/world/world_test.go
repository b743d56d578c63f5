package world

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zombie = resource.New("minecraft", "zombie")

// recorder запоминает события мира
type recorder struct {
	NopListener
	mu       sync.Mutex
	loaded   []vec.Vec3
	unloaded []vec.Vec3
	removed  []vec.Vec3
	spawns   []spawner.SpawnEvent
	ticks    int
	logins   []string
	saves    int
	breakExp int // если не 0, подменяет ExpToDrop
}

func (r *recorder) SpawnerLoaded(_ *World, sp *SpawnerEntity) {
	r.mu.Lock()
	r.loaded = append(r.loaded, sp.Pos())
	r.mu.Unlock()
}

func (r *recorder) SpawnerUnloaded(_ *World, sp *SpawnerEntity) {
	r.mu.Lock()
	r.unloaded = append(r.unloaded, sp.Pos())
	r.mu.Unlock()
}

func (r *recorder) SpawnerRemoved(_ *World, sp *SpawnerEntity) {
	r.mu.Lock()
	r.removed = append(r.removed, sp.Pos())
	r.mu.Unlock()
}

func (r *recorder) SpawnerTick(*World, *SpawnerEntity) {
	r.mu.Lock()
	r.ticks++
	r.mu.Unlock()
}

func (r *recorder) MobSpawning(ev spawner.SpawnEvent) {
	r.mu.Lock()
	r.spawns = append(r.spawns, ev)
	r.mu.Unlock()
}

func (r *recorder) BlockBreak(ev *spawner.BreakEvent) {
	if r.breakExp != 0 {
		ev.ExpToDrop = r.breakExp
	}
}

func (r *recorder) PlayerLoggedIn(_ *World, p *Player) {
	r.mu.Lock()
	r.logins = append(r.logins, p.Name)
	r.mu.Unlock()
}

func (r *recorder) WorldSave(*World) {
	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
}

func (r *recorder) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func newTestWorld(t *testing.T) (*World, *recorder) {
	t.Helper()
	w := New(DefaultConfig())
	rec := &recorder{}
	w.AddListener(rec)
	return w, rec
}

func ticks(w *World, n int) {
	for i := 0; i < n; i++ {
		w.Tick()
	}
}

func TestPlaceSpawnerCreatesBlockEntity(t *testing.T) {
	w, rec := newTestWorld(t)
	pos := vec.Vec3{X: 1, Y: 41, Z: 1}

	sp := w.PlaceSpawner(pos, zombie)
	require.NotNil(t, sp)
	assert.Equal(t, block.SpawnerBlockID, w.BlockAt(pos))
	assert.Equal(t, zombie, sp.SpawnerLogic().EntityType())
	assert.Equal(t, []vec.Vec3{pos}, rec.loaded)
	assert.Equal(t, spawner.Active, spawner.ReadActivation(sp.Logic()))

	got, ok := w.SpawnerAt(pos)
	require.True(t, ok)
	assert.Equal(t, pos, got.Pos())

	_, ok = w.SpawnerAt(vec.Vec3{})
	assert.False(t, ok)

	// Замена блока уничтожает блок-сущность
	w.SetBlock(pos, block.StoneBlockID)
	assert.Equal(t, []vec.Vec3{pos}, rec.removed)
	_, ok = w.SpawnerEntityAt(pos)
	assert.False(t, ok)
}

func TestSpawnerLogicRoundTrip(t *testing.T) {
	l := NewSpawnerLogic(zombie)
	tag := block.Metadata{}
	l.Save(tag)

	assert.Equal(t, int16(6), tag.Short(spawner.KeyMaxNearbyEntities))
	assert.Equal(t, int16(16), tag.Short(spawner.KeyRequiredPlayerRange))
	assert.Equal(t, "minecraft:zombie", tag.String("SpawnData"))

	tag.PutShort(spawner.KeyMaxNearbyEntities, 0)
	tag.PutShort(spawner.KeyRequiredPlayerRange, 0)
	l.Load(tag)
	assert.Equal(t, spawner.Disabled, spawner.ReadActivation(l))

	// Отсутствующие ключи не трогают поля
	l.Load(block.Metadata{})
	assert.Equal(t, spawner.Disabled, spawner.ReadActivation(l))
	assert.Equal(t, zombie, l.EntityType())
}

func TestSpawnerSpawnsNearPlayer(t *testing.T) {
	w, rec := newTestWorld(t)
	pos := vec.Vec3{X: 0, Y: 41, Z: 0}
	w.PlaceSpawner(pos, zombie)
	w.Login("steve", vec.Vec3Float{X: 3, Y: 41, Z: 3})

	// Начальная задержка 20 тиков, на 21-м - попытка спавна из 4 мобов
	ticks(w, 20)
	assert.Empty(t, w.Mobs())
	w.Tick()

	mobs := w.Mobs()
	require.Len(t, mobs, 4)
	for _, m := range mobs {
		assert.Equal(t, zombie, m.Type)
		require.NotNil(t, m.Spawner)
		assert.Equal(t, pos, *m.Spawner)
	}
	require.Len(t, rec.spawns, 4)
	assert.Equal(t, spawner.ReasonSpawner, rec.spawns[0].Reason)
	assert.Equal(t, pos, rec.spawns[0].Spawner.Pos())
	assert.Equal(t, 21, rec.ticks)
}

func TestSpawnerIdleWithoutPlayer(t *testing.T) {
	w, _ := newTestWorld(t)
	w.PlaceSpawner(vec.Vec3{X: 0, Y: 41, Z: 0}, zombie)
	w.Login("far", vec.Vec3Float{X: 100, Y: 41, Z: 0})

	ticks(w, 100)
	assert.Empty(t, w.Mobs())
}

func TestDisabledSpawnerDoesNotSpawn(t *testing.T) {
	w, _ := newTestWorld(t)
	sp := w.PlaceSpawner(vec.Vec3{X: 0, Y: 41, Z: 0}, zombie)
	spawner.WriteActivation(sp.Logic(), spawner.Disabled)
	w.Login("steve", vec.Vec3Float{X: 0.5, Y: 41.5, Z: 0.5})

	ticks(w, 100)
	assert.Empty(t, w.Mobs())

	spawner.WriteActivation(sp.Logic(), spawner.Active)
	ticks(w, 100)
	assert.NotEmpty(t, w.Mobs())
}

func TestMobsDespawn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MobLifetime = 5
	w := New(cfg)

	w.SpawnNatural(zombie, vec.Vec3Float{})
	require.Len(t, w.Mobs(), 1)
	assert.Nil(t, w.Mobs()[0].Spawner)

	ticks(w, 5)
	assert.Empty(t, w.Mobs())
}

func TestUnloadAndLoadChunk(t *testing.T) {
	w, rec := newTestWorld(t)
	pos := vec.Vec3{X: 20, Y: 41, Z: -3}
	sp := w.PlaceSpawner(pos, zombie)
	spawner.WriteActivation(sp.Logic(), spawner.Disabled)
	w.PlaceSpawner(vec.Vec3{X: 100, Y: 41, Z: 100}, zombie)

	chunk := pos.ToVec2().ToChunkCoords()
	assert.Equal(t, 1, w.UnloadChunk(chunk))
	assert.Equal(t, []vec.Vec3{pos}, rec.unloaded)
	assert.Len(t, w.Spawners(), 1)
	// Блок остаётся, блок-сущность выгружена
	assert.Equal(t, block.SpawnerBlockID, w.BlockAt(pos))

	assert.Equal(t, 1, w.LoadChunk(chunk))
	restored, ok := w.SpawnerEntityAt(pos)
	require.True(t, ok)
	assert.Equal(t, spawner.Disabled, spawner.ReadActivation(restored.Logic()))
	assert.Equal(t, zombie, restored.SpawnerLogic().EntityType())
	assert.Len(t, rec.loaded, 3)
}

func TestBreakBlock(t *testing.T) {
	w, rec := newTestWorld(t)
	pos := vec.Vec3{X: 0, Y: 41, Z: 0}
	w.PlaceSpawner(pos, zombie)

	assert.Equal(t, 29, w.BreakBlock(pos))
	assert.Equal(t, block.AirBlockID, w.BlockAt(pos))
	assert.Equal(t, []vec.Vec3{pos}, rec.removed)

	w.PlaceSpawner(pos, zombie)
	rec.breakExp = 100
	assert.Equal(t, 100, w.BreakBlock(pos))

	assert.Zero(t, w.BreakBlock(vec.Vec3{X: 9, Y: 9, Z: 9}))
}

func TestLoginNotifiesListeners(t *testing.T) {
	w, rec := newTestWorld(t)
	p := w.Login("alex", vec.Vec3Float{})
	assert.Equal(t, []string{"alex"}, rec.logins)

	p.Swing(spawner.MainHand)
	assert.Equal(t, 1, p.Swings)
	w.Logout("alex")
	assert.Empty(t, w.playerList())
}

func TestParticlesAreBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxParticles = 3
	w := New(cfg)

	for i := 0; i < 5; i++ {
		w.AddParticle("minecraft:smoke", vec.Vec3Float{X: float64(i)}, vec.Vec3Float{})
	}
	ps := w.Particles()
	require.Len(t, ps, 3)
	assert.Equal(t, 2.0, ps[0].Pos.X)
	assert.Equal(t, 4.0, ps[2].Pos.X)
}

func TestCommandQueue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CommandBuffer = 1
	w := New(cfg)

	ran := 0
	require.NoError(t, w.Enqueue(func(*World) { ran++ }))
	assert.ErrorIs(t, w.Enqueue(func(*World) { ran++ }), ErrQueueFull)

	w.Tick()
	assert.Equal(t, 1, ran)
}

func TestDoWaitsForTick(t *testing.T) {
	w, _ := newTestWorld(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	var seen uint64
	go func() {
		done <- w.Do(ctx, func(w *World) { seen = w.currentTick })
	}()

	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.NotZero(t, seen)
			return
		case <-time.After(time.Millisecond):
			w.Tick()
		}
	}
}

func TestRunSavesOnShutdown(t *testing.T) {
	w, rec := newTestWorld(t)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		w.Run(ctx, 100, 0)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return w.CurrentTick() > 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-stopped
	assert.Equal(t, 1, rec.saveCount())
}

func TestClientSideWorldDoesNotSimulate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClientSide = true
	w := New(cfg)
	rec := &recorder{}
	w.AddListener(rec)

	w.PlaceSpawner(vec.Vec3{}, zombie)
	w.Login("steve", vec.Vec3Float{})
	ticks(w, 50)

	assert.True(t, w.IsClientSide())
	assert.Empty(t, w.Mobs())
	assert.Equal(t, 50, rec.ticks)
}

func TestGeneratorPopulate(t *testing.T) {
	g := NewGenerator(7)
	g.Threshold = -10 // каждая клетка получает спаунер

	w := New(DefaultConfig())
	placed := g.Populate(w, vec.Vec2{}, 32)
	require.Len(t, placed, 16)
	assert.Len(t, w.Spawners(), 16)
	for _, pos := range placed {
		assert.Equal(t, block.SpawnerBlockID, w.BlockAt(pos))
		assert.Equal(t, block.StoneBlockID, w.BlockAt(vec.Vec3{X: pos.X, Y: pos.Y - 1, Z: pos.Z}))
	}

	again := NewGenerator(7)
	again.Threshold = -10
	assert.Equal(t, placed, again.Populate(New(DefaultConfig()), vec.Vec2{}, 32))
}

func TestGeneratorMaxSpawners(t *testing.T) {
	g := NewGenerator(7)
	g.Threshold = -10
	g.MaxSpawners = 5

	w := New(DefaultConfig())
	assert.Len(t, g.Populate(w, vec.Vec2{}, 32), 5)
	assert.Len(t, w.Spawners(), 5)
}
