package spawner

import (
	"context"
	"testing"

	"github.com/annel0/blockverse-tweaks/internal/matcher"
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	transitions []Transition
}

func (r *recorder) Notify(t Transition) { r.transitions = append(r.transitions, t) }

func newTestGovernor(t *testing.T, opts ...Option) (*Governor, *fakeWorld, *fakeSpawner) {
	t.Helper()
	table := NewTable(nil)
	g := NewGovernor(table, opts...)
	w := newFakeWorld()
	sp := w.addSpawner(vec.Vec3{X: 0, Y: 64, Z: 0})
	w.spawn = vec.Vec3{X: 0, Y: 64, Z: 0}
	table.Attach(context.Background(), KeyOf(w, sp))
	return g, w, sp
}

func spawnFrom(w *fakeWorld, sp *fakeSpawner, entity resource.Location) SpawnEvent {
	return SpawnEvent{World: w, Reason: ReasonSpawner, Spawner: sp, EntityType: entity}
}

func spawnedMobs(t *testing.T, g *Governor, w World, sp Spawner) int {
	t.Helper()
	state, ok := g.Table().Get(KeyOf(w, sp))
	require.True(t, ok)
	return state.SpawnedMobs()
}

func TestOnSpawnDisablesOnTwentyFifth(t *testing.T) {
	rec := &recorder{}
	g, w, sp := newTestGovernor(t, WithNotifier(rec))

	for i := 0; i < 24; i++ {
		g.OnSpawn(spawnFrom(w, sp, zombie))
	}
	assert.Equal(t, Active, ReadActivation(sp.logic), "после 24 мобов спаунер активен")
	assert.Empty(t, rec.transitions)

	g.OnSpawn(spawnFrom(w, sp, zombie))
	assert.Equal(t, Disabled, ReadActivation(sp.logic), "25-й моб отключает спаунер")
	require.Len(t, rec.transitions, 1)
	assert.Equal(t, TransitionDisabled, rec.transitions[0].Kind)
	assert.Equal(t, 25, rec.transitions[0].Cap)

	g.OnSpawn(spawnFrom(w, sp, zombie))
	assert.Equal(t, Disabled, ReadActivation(sp.logic))
	assert.Len(t, rec.transitions, 1, "повторное отключение идемпотентно")
	assert.Equal(t, 26, spawnedMobs(t, g, w, sp))
}

func TestOnSpawnIgnoresOtherReasonsAndFeatureOff(t *testing.T) {
	g, w, sp := newTestGovernor(t)

	ev := spawnFrom(w, sp, zombie)
	ev.Reason = ReasonNatural
	g.OnSpawn(ev)
	g.OnSpawn(SpawnEvent{World: w, Reason: ReasonSpawner, EntityType: zombie})
	assert.Equal(t, 0, spawnedMobs(t, g, w, sp))

	s := g.Settings()
	s.Enabled = false
	g.Apply(s)
	g.OnSpawn(spawnFrom(w, sp, zombie))
	assert.Equal(t, 0, spawnedMobs(t, g, w, sp))
}

func TestOnSpawnWithoutStateIsNoop(t *testing.T) {
	g := NewGovernor(NewTable(nil))
	w := newFakeWorld()
	sp := w.addSpawner(vec.Vec3{X: 3})

	assert.NotPanics(t, func() { g.OnSpawn(spawnFrom(w, sp, zombie)) })
	assert.Equal(t, Active, ReadActivation(sp.logic))
}

func TestOnSpawnCountsBlacklistedButNeverDisables(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	s := g.Settings()
	s.MinSpawnableMobs = 2
	s.Blacklist = matcher.ParseList([]string{"minecraft:zombie"})
	g.Apply(s)

	for i := 0; i < 5; i++ {
		g.OnSpawn(spawnFrom(w, sp, zombie))
	}
	assert.Equal(t, 5, spawnedMobs(t, g, w, sp), "исключённые мобы всё равно считаются")
	assert.Equal(t, Active, ReadActivation(sp.logic))

	g.OnSpawn(spawnFrom(w, sp, skeleton))
	assert.Equal(t, Disabled, ReadActivation(sp.logic), "разрешённый моб проверяет лимит по общему счётчику")
}

func TestOnSpawnWhitelist(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	s := g.Settings()
	s.MinSpawnableMobs = 1
	s.Blacklist = matcher.ParseList([]string{"minecraft:zombie"})
	s.BlacklistAsWhitelist = true
	g.Apply(s)

	g.OnSpawn(spawnFrom(w, sp, skeleton))
	assert.Equal(t, Active, ReadActivation(sp.logic), "моб вне белого списка не отключает")

	g.OnSpawn(spawnFrom(w, sp, zombie))
	assert.Equal(t, Disabled, ReadActivation(sp.logic))
}

func TestOnSpawnUnknownEntityTypeOnlyCounts(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	s := g.Settings()
	s.MinSpawnableMobs = 0
	g.Apply(s)

	g.OnSpawn(spawnFrom(w, sp, resource.Location{}))
	assert.Equal(t, 1, spawnedMobs(t, g, w, sp))
	assert.Equal(t, Active, ReadActivation(sp.logic))
}

func TestOnSpawnDistanceRaisesCap(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	w.spawn = vec.Vec3{X: 1280, Y: 64, Z: 0}

	for i := 0; i < 184; i++ {
		g.OnSpawn(spawnFrom(w, sp, zombie))
	}
	assert.Equal(t, Active, ReadActivation(sp.logic))
	g.OnSpawn(spawnFrom(w, sp, zombie))
	assert.Equal(t, Disabled, ReadActivation(sp.logic))
}

func TestOnTickReenablesWithoutReset(t *testing.T) {
	rec := &recorder{}
	g, w, sp := newTestGovernor(t, WithNotifier(rec))
	for i := 0; i < 25; i++ {
		g.OnSpawn(spawnFrom(w, sp, zombie))
	}
	require.Equal(t, Disabled, ReadActivation(sp.logic))

	g.OnTick(w, sp)
	assert.Equal(t, Disabled, ReadActivation(sp.logic), "лимит не изменился")

	s := g.Settings()
	s.Multiplier = 2
	g.Apply(s)
	g.OnTick(w, sp)

	assert.Equal(t, Active, ReadActivation(sp.logic))
	assert.Equal(t, 25, spawnedMobs(t, g, w, sp), "автоматическое включение сохраняет счётчик")
	require.Len(t, rec.transitions, 2)
	assert.Equal(t, TransitionReenabled, rec.transitions[1].Kind)
	assert.Equal(t, 50, rec.transitions[1].Cap)
}

func TestOnTickNeverDisablesActiveSpawner(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	state, _ := g.Table().Get(KeyOf(w, sp))
	state.SetSpawnedMobs(1000)

	for i := 0; i < 3; i++ {
		g.OnTick(w, sp)
	}
	assert.Equal(t, Active, ReadActivation(sp.logic))
	assert.Equal(t, 1000, state.SpawnedMobs())
}

func TestOnTickFeatureOffLeavesDisabled(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	WriteActivation(sp.logic, Disabled)

	s := g.Settings()
	s.Enabled = false
	g.Apply(s)
	g.OnTick(w, sp)

	assert.Equal(t, Disabled, ReadActivation(sp.logic))
}

func TestOnTickClientSmoke(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	w.client = true

	g.OnTick(w, sp)
	assert.Empty(t, w.particles, "активный спаунер не дымит")

	WriteActivation(sp.logic, Disabled)
	g.OnTick(w, sp)
	require.Len(t, w.particles, SmokeParticles)
	for _, p := range w.particles {
		assert.Equal(t, "minecraft:smoke", p.kind)
		assert.GreaterOrEqual(t, p.pos.Y, 64.0)
		assert.Less(t, p.pos.Y, 65.0)
	}
	assert.Equal(t, Disabled, ReadActivation(sp.logic), "частицы не меняют состояние")
}

func TestReagentResetsDisabledSpawner(t *testing.T) {
	rec := &recorder{}
	g, w, sp := newTestGovernor(t, WithNotifier(rec))
	s := g.Settings()
	s.Reagent = &pearl
	g.Apply(s)

	for i := 0; i < 30; i++ {
		g.OnSpawn(spawnFrom(w, sp, zombie))
	}
	require.Equal(t, Disabled, ReadActivation(sp.logic))

	player := &fakePlayer{}
	ev := &InteractEvent{World: w, Pos: sp.pos, Player: player, Hand: OffHand, Stack: &ItemStack{Item: pearl, Count: 3}}
	g.OnRightClickBlock(ev)

	assert.Equal(t, Active, ReadActivation(sp.logic))
	assert.Equal(t, 0, spawnedMobs(t, g, w, sp))
	assert.Equal(t, 2, ev.Stack.Count)
	assert.True(t, ev.Canceled)
	assert.Equal(t, ResultAllow, ev.UseItem)
	assert.Equal(t, []Hand{OffHand}, player.swings)
	assert.Equal(t, TransitionReset, rec.transitions[len(rec.transitions)-1].Kind)
}

func TestReagentPreconditions(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	WriteActivation(sp.logic, Disabled)

	stack := &ItemStack{Item: pearl, Count: 1}
	g.OnRightClickBlock(&InteractEvent{World: w, Pos: sp.pos, Stack: stack})
	assert.Equal(t, 1, stack.Count, "реагент не настроен")

	s := g.Settings()
	s.Reagent = &pearl
	g.Apply(s)

	other := &ItemStack{Item: zombie, Count: 1}
	g.OnRightClickBlock(&InteractEvent{World: w, Pos: sp.pos, Stack: other})
	assert.Equal(t, 1, other.Count, "другой предмет")

	g.OnRightClickBlock(&InteractEvent{World: w, Pos: vec.Vec3{X: 99}, Stack: stack})
	assert.Equal(t, 1, stack.Count, "не спаунер")

	WriteActivation(sp.logic, Active)
	ev := &InteractEvent{World: w, Pos: sp.pos, Stack: stack}
	g.OnRightClickBlock(ev)
	assert.Equal(t, 1, stack.Count, "активный спаунер не сбрасывается")
	assert.False(t, ev.Canceled)
}

func TestReagentWorksWhileFeatureDisabled(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	s := g.Settings()
	s.Enabled = false
	s.Reagent = &pearl
	g.Apply(s)
	WriteActivation(sp.logic, Disabled)

	g.OnRightClickBlock(&InteractEvent{World: w, Pos: sp.pos, Stack: &ItemStack{Item: pearl, Count: 1}})
	assert.Equal(t, Active, ReadActivation(sp.logic))
}

func TestResetAlwaysZeroAndActive(t *testing.T) {
	g, w, sp := newTestGovernor(t)
	state, _ := g.Table().Get(KeyOf(w, sp))

	for _, prior := range []int{0, 1, 25, 9999} {
		state.SetSpawnedMobs(prior)
		WriteActivation(sp.logic, Disabled)
		assert.True(t, g.Reset(w, sp))
		assert.Equal(t, 0, state.SpawnedMobs())
		assert.Equal(t, Active, ReadActivation(sp.logic))
	}

	lonely := w.addSpawner(vec.Vec3{X: 50})
	assert.False(t, g.Reset(w, lonely))
}

func TestOnBlockBreakBonusExperience(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	g, w, _ := newTestGovernor(t, WithMetrics(metrics))
	w.spawn = vec.Vec3{}

	ev := &BreakEvent{World: w, Pos: vec.Vec3{X: 1024}, Block: block.SpawnerBlockID, ExpToDrop: 10}
	g.OnBlockBreak(ev)
	assert.Equal(t, 20, ev.ExpToDrop)
	assert.Equal(t, 10.0, testutil.ToFloat64(metrics.bonusExperience))

	stone := &BreakEvent{World: w, Pos: vec.Vec3{X: 1024}, Block: block.StoneBlockID, ExpToDrop: 10}
	g.OnBlockBreak(stone)
	assert.Equal(t, 10, stone.ExpToDrop)

	s := g.Settings()
	s.BonusExperience = false
	g.Apply(s)
	off := &BreakEvent{World: w, Pos: vec.Vec3{X: 1024}, Block: block.SpawnerBlockID, ExpToDrop: 10}
	g.OnBlockBreak(off)
	assert.Equal(t, 10, off.ExpToDrop)
}

func TestMetricsCountTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	g, w, sp := newTestGovernor(t, WithMetrics(metrics))

	for i := 0; i < 25; i++ {
		g.OnSpawn(spawnFrom(w, sp, zombie))
	}
	g.Reset(w, sp)

	assert.Equal(t, 25.0, testutil.ToFloat64(metrics.spawnsCounted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.disabled))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reagentResets))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.reenabled))
}
