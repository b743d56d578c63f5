// Package spawner ограничивает число мобов, которое может создать спаунер,
// в зависимости от удалённости от точки спавна мира.
package spawner

import (
	"sync/atomic"

	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/matcher"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// SmokeParticles - число частиц дыма вокруг отключённого спаунера за тик
const SmokeParticles = 10

// Governor применяет правила временных спаунеров к событиям хоста.
// Все обработчики вызываются из главного потока тиков хоста.
type Governor struct {
	settings atomic.Pointer[Settings]
	table    *Table
	tags     matcher.TagSource
	metrics  *Metrics
	notifier Notifier
	log      *logging.Logger
}

// Option настраивает Governor
type Option func(*Governor)

// WithTags задаёт реестр тегов сущностей для матчеров вида #tag
func WithTags(tags matcher.TagSource) Option {
	return func(g *Governor) { g.tags = tags }
}

// WithMetrics задаёт Prometheus-счётчики
func WithMetrics(m *Metrics) Option {
	return func(g *Governor) { g.metrics = m }
}

// WithNotifier задаёт получателя уведомлений о переходах
func WithNotifier(n Notifier) Option {
	return func(g *Governor) { g.notifier = n }
}

// WithLogger задаёт логгер компонента
func WithLogger(l *logging.Logger) Option {
	return func(g *Governor) { g.log = l }
}

// NewGovernor создаёт governor с настройками по умолчанию
func NewGovernor(table *Table, opts ...Option) *Governor {
	g := &Governor{table: table, log: logging.Default()}
	for _, opt := range opts {
		opt(g)
	}
	s := DefaultSettings()
	g.settings.Store(&s)
	return g
}

// Apply атомарно заменяет снимок настроек
func (g *Governor) Apply(s Settings) {
	g.settings.Store(&s)
}

// Settings возвращает текущий снимок настроек
func (g *Governor) Settings() Settings {
	return *g.settings.Load()
}

// Table возвращает таблицу состояний спаунеров
func (g *Governor) Table() *Table {
	return g.table
}

// Cap вычисляет текущий лимит мобов для спаунера
func (g *Governor) Cap(w World, s Spawner) int {
	settings := g.settings.Load()
	return MaxSpawned(distance(w, s.Pos()), settings.MinSpawnableMobs, settings.Multiplier)
}

// OnSpawn учитывает моба, созданного спаунером, и отключает спаунер при достижении лимита.
// Счётчик увеличивается до фильтрации: исключённые мобы тоже считаются.
func (g *Governor) OnSpawn(ev SpawnEvent) {
	s := g.settings.Load()
	if !s.Enabled || ev.Reason != ReasonSpawner || ev.Spawner == nil || ev.World == nil {
		return
	}

	key := KeyOf(ev.World, ev.Spawner)
	state, ok := g.table.Get(key)
	if !ok {
		return
	}
	state.AddSpawnedMobs(1)
	g.metrics.spawnCounted()

	if ev.EntityType.IsZero() {
		return
	}
	if matcher.Classify(ev.EntityType, ev.World.Dimension(), s.Blacklist, s.BlacklistAsWhitelist, g.tags) == matcher.Blocked {
		return
	}

	maxSpawned := MaxSpawned(distance(ev.World, ev.Spawner.Pos()), s.MinSpawnableMobs, s.Multiplier)
	spawned := state.SpawnedMobs()
	if spawned < maxSpawned {
		return
	}

	logic := ev.Spawner.Logic()
	wasActive := ReadActivation(logic) == Active
	WriteActivation(logic, Disabled)
	if wasActive {
		g.log.Debug("Спаунер %s отключён: %d/%d", key, spawned, maxSpawned)
		g.emit(Transition{Kind: TransitionDisabled, Key: key, SpawnedMobs: spawned, Cap: maxSpawned})
	}
}

// OnTick вызывается хостом каждый тик для каждого загруженного спаунера.
// На сервере повторно включает спаунер, если лимит вырос выше счётчика
// (счётчик при этом не сбрасывается). На клиенте рисует дым над отключённым спаунером.
// При выключенной функции ничего не делает: отключённые спаунеры остаются отключёнными.
func (g *Governor) OnTick(w World, sp Spawner) {
	s := g.settings.Load()
	if !s.Enabled || w == nil || sp == nil {
		return
	}

	logic := sp.Logic()
	if !w.IsClientSide() {
		key := KeyOf(w, sp)
		state, ok := g.table.Get(key)
		if !ok {
			return
		}
		maxSpawned := MaxSpawned(distance(w, sp.Pos()), s.MinSpawnableMobs, s.Multiplier)
		spawned := state.SpawnedMobs()
		if spawned < maxSpawned && ReadActivation(logic) == Disabled {
			WriteActivation(logic, Active)
			g.log.Debug("Спаунер %s снова активен: %d/%d", key, spawned, maxSpawned)
			g.emit(Transition{Kind: TransitionReenabled, Key: key, SpawnedMobs: spawned, Cap: maxSpawned})
		}
		return
	}

	if ReadActivation(logic) != Disabled {
		return
	}
	rnd := w.Random()
	origin := sp.Pos().ToFloat()
	for i := 0; i < SmokeParticles; i++ {
		pos := vec.Vec3Float{
			X: origin.X + rnd.Float64(),
			Y: origin.Y + rnd.Float64(),
			Z: origin.Z + rnd.Float64(),
		}
		w.AddParticle("minecraft:smoke", pos, vec.Vec3Float{})
	}
}

// OnRightClickBlock сбрасывает отключённый спаунер, если игрок использовал реагент.
// Реагент расходуется, действие блока по умолчанию отменяется.
func (g *Governor) OnRightClickBlock(ev *InteractEvent) {
	s := g.settings.Load()
	if s.Reagent == nil || ev == nil || ev.World == nil {
		return
	}
	if ev.Stack.IsEmpty() || ev.Stack.Item != *s.Reagent {
		return
	}
	if ev.World.BlockAt(ev.Pos) != block.SpawnerBlockID {
		return
	}
	sp, ok := ev.World.SpawnerAt(ev.Pos)
	if !ok {
		return
	}
	if ReadActivation(sp.Logic()) != Disabled {
		return
	}
	if _, ok := g.table.Get(KeyOf(ev.World, sp)); !ok {
		return
	}

	ev.UseItem = ResultAllow
	ev.Canceled = true
	ev.Stack.Shrink(1)
	if ev.Player != nil {
		ev.Player.Swing(ev.Hand)
	}
	g.Reset(ev.World, sp)
}

// Reset включает спаунер и обнуляет счётчик. Возвращает false, если состояние не прикреплено.
func (g *Governor) Reset(w World, sp Spawner) bool {
	key := KeyOf(w, sp)
	state, ok := g.table.Get(key)
	if !ok {
		return false
	}
	WriteActivation(sp.Logic(), Active)
	state.SetSpawnedMobs(0)
	g.log.Debug("Спаунер %s сброшен", key)
	g.emit(Transition{Kind: TransitionReset, Key: key, SpawnedMobs: 0, Cap: g.Cap(w, sp)})
	return true
}

// OnBlockBreak увеличивает опыт за разрушение спаунера пропорционально удалённости
func (g *Governor) OnBlockBreak(ev *BreakEvent) {
	s := g.settings.Load()
	if !s.Enabled || !s.BonusExperience || ev == nil || ev.World == nil {
		return
	}
	if ev.Block != block.SpawnerBlockID {
		return
	}
	base := ev.ExpToDrop
	ev.ExpToDrop = BonusExperience(base, distance(ev.World, ev.Pos))
	g.metrics.bonus(ev.ExpToDrop - base)
}

func (g *Governor) emit(t Transition) {
	g.metrics.transition(t.Kind)
	if g.notifier != nil {
		g.notifier.Notify(t)
	}
}

func distance(w World, pos vec.Vec3) float64 {
	return pos.DistanceTo(w.SpawnPoint())
}
