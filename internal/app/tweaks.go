// Package app связывает функции твиков с миром, хранилищем, шиной событий и метриками.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/eventbus"
	"github.com/annel0/blockverse-tweaks/internal/feature"
	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/observability"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
	"github.com/annel0/blockverse-tweaks/internal/stacksize"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
)

// ErrSpawnerNotFound - по ключу нет загруженного спаунера
var ErrSpawnerNotFound = errors.New("спаунер не найден")

// storageTimeout ограничивает операции хранилища, вызванные из потока тиков
const storageTimeout = 2 * time.Second

// Options - внешние зависимости Tweaks; все поля необязательны
type Options struct {
	Repo       spawner.Repository
	Bus        eventbus.EventBus
	Registerer prometheus.Registerer
	Registries *Registries
	Latch      *stacksize.Latch
	Source     string // имя источника событий
}

// Tweaks - набор игровых функций, подключаемый к миру как Listener
type Tweaks struct {
	mu  sync.RWMutex
	cfg *config.Config

	registries Registries
	table      *spawner.Table
	governor   *spawner.Governor
	stack      *stacksize.Feature
	publisher  *eventbus.Publisher
	modules    []*feature.Module

	stackOverrides prometheus.Gauge
	log            *logging.Logger
}

var _ world.Listener = (*Tweaks)(nil)

// New собирает функции и применяет конфигурацию
func New(cfg *config.Config, opts Options) *Tweaks {
	if cfg == nil {
		cfg = config.Default()
	}
	regs := DefaultRegistries()
	if opts.Registries != nil {
		regs = *opts.Registries
	}
	if opts.Source == "" {
		opts.Source = "blockverse-tweaks"
	}

	t := &Tweaks{
		registries: regs,
		table:      spawner.NewTable(opts.Repo),
		publisher:  eventbus.NewPublisher(opts.Bus, opts.Source),
		log:        logging.GetGovernorLogger(),
		stackOverrides: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stacksize",
			Name:      "items_overridden",
			Help:      "Предметы, чей размер стака изменён таблицей.",
		}),
	}

	govOpts := []spawner.Option{
		spawner.WithTags(regs.EntityTags),
		spawner.WithNotifier(t.publisher),
		spawner.WithLogger(t.log),
	}
	if opts.Registerer != nil {
		govOpts = append(govOpts, spawner.WithMetrics(spawner.NewMetrics(opts.Registerer)))
		opts.Registerer.MustRegister(t.stackOverrides)
	}
	t.governor = spawner.NewGovernor(t.table, govOpts...)

	t.stack = stacksize.NewFeature(regs.Items, regs.ItemTags, opts.Latch)
	t.stack.OnApplied(func(changed int) {
		t.stackOverrides.Set(float64(changed))
		t.publisher.StackSizesApplied(len(t.stack.Rules()), changed)
	})

	t.modules = []*feature.Module{
		feature.NewModule(ModuleMisc, NewTemporarySpawners(t.governor, regs.Items)),
		feature.NewModule(ModuleStackSize, NewCustomStackSize(t.stack)),
	}

	t.applyConfig(cfg)
	return t
}

func (t *Tweaks) applyConfig(cfg *config.Config) {
	for _, m := range t.modules {
		m.LoadConfig(cfg)
	}
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
}

// Reload применяет новую конфигурацию ко всем модулям.
// Вызывается из любой горутины: governor меняет снимок настроек атомарно.
func (t *Tweaks) Reload(ctx context.Context, cfg *config.Config) error {
	_, span := observability.Tracer().Start(ctx, "tweaks.reload")
	defer span.End()

	if cfg == nil {
		return errors.New("пустая конфигурация")
	}
	if err := cfg.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	t.applyConfig(cfg)
	s := t.governor.Settings()
	span.SetAttributes(
		attribute.Bool("spawners.enabled", s.Enabled),
		attribute.Int("spawners.min", s.MinSpawnableMobs),
		attribute.Float64("spawners.multiplier", s.Multiplier),
		attribute.Int("spawners.filter_size", len(s.Blacklist)),
		attribute.Int("stacksize.rules", len(t.stack.Rules())),
	)
	logging.Info("Конфигурация перезагружена: спаунеры=%v, правил стаков=%d", s.Enabled, len(t.stack.Rules()))
	return nil
}

// Config возвращает текущую конфигурацию
func (t *Tweaks) Config() *config.Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

func (t *Tweaks) Governor() *spawner.Governor   { return t.governor }
func (t *Tweaks) Table() *spawner.Table         { return t.table }
func (t *Tweaks) StackSize() *stacksize.Feature { return t.stack }
func (t *Tweaks) Registries() Registries        { return t.registries }

// Features возвращает состояние всех функций
func (t *Tweaks) Features() []feature.Status {
	return feature.Statuses(t.modules...)
}

// Attach подписывает твики на события мира
func (t *Tweaks) Attach(w *world.World) {
	w.AddListener(t)
}

// Close дожидается публикации накопленных событий. Вызывается после остановки мира.
func (t *Tweaks) Close() {
	t.publisher.Close()
}

// Flush сохраняет изменённые счётчики
func (t *Tweaks) Flush(ctx context.Context) error {
	return t.table.Flush(ctx)
}

// SpawnerInfo - состояние спаунера для админ-API
type SpawnerInfo struct {
	Key         string   `json:"key"`
	Dimension   string   `json:"dimension"`
	Pos         vec.Vec3 `json:"pos"`
	EntityType  string   `json:"entity_type"`
	SpawnedMobs int      `json:"spawned_mobs"`
	Cap         int      `json:"cap"`
	Disabled    bool     `json:"disabled"`
}

// Inspect описывает спаунер мира. Вызывается из потока тиков.
func (t *Tweaks) Inspect(w *world.World, sp *world.SpawnerEntity) SpawnerInfo {
	key := spawner.KeyOf(w, sp)
	info := SpawnerInfo{
		Key:        key.String(),
		Dimension:  key.Dimension.String(),
		Pos:        key.Pos,
		EntityType: sp.SpawnerLogic().EntityType().String(),
		Cap:        t.governor.Cap(w, sp),
		Disabled:   spawner.ReadActivation(sp.Logic()) == spawner.Disabled,
	}
	if state, ok := t.table.Get(key); ok {
		info.SpawnedMobs = state.SpawnedMobs()
	}
	return info
}

// InspectAll описывает все загруженные спаунеры мира
func (t *Tweaks) InspectAll(w *world.World) []SpawnerInfo {
	spawners := w.Spawners()
	out := make([]SpawnerInfo, 0, len(spawners))
	for _, sp := range spawners {
		out = append(out, t.Inspect(w, sp))
	}
	return out
}

// ResetAt сбрасывает спаунер в позиции: включает его и обнуляет счётчик
func (t *Tweaks) ResetAt(w *world.World, pos vec.Vec3) (SpawnerInfo, error) {
	sp, ok := w.SpawnerEntityAt(pos)
	if !ok {
		return SpawnerInfo{}, ErrSpawnerNotFound
	}
	if !t.governor.Reset(w, sp) {
		return SpawnerInfo{}, ErrSpawnerNotFound
	}
	return t.Inspect(w, sp), nil
}

func storageContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storageTimeout)
}

//================ world.Listener =================//

func (t *Tweaks) SpawnerLoaded(w *world.World, sp *world.SpawnerEntity) {
	ctx, cancel := storageContext()
	defer cancel()
	t.table.Attach(ctx, spawner.KeyOf(w, sp))
}

func (t *Tweaks) SpawnerUnloaded(w *world.World, sp *world.SpawnerEntity) {
	ctx, cancel := storageContext()
	defer cancel()
	key := spawner.KeyOf(w, sp)
	if err := t.table.Detach(ctx, key); err != nil {
		t.log.Warn("Не удалось сохранить спаунер %s при выгрузке: %v", key, err)
	}
}

func (t *Tweaks) SpawnerRemoved(w *world.World, sp *world.SpawnerEntity) {
	ctx, cancel := storageContext()
	defer cancel()
	key := spawner.KeyOf(w, sp)
	if err := t.table.Remove(ctx, key); err != nil {
		t.log.Warn("Не удалось удалить состояние спаунера %s: %v", key, err)
	}
}

func (t *Tweaks) SpawnerTick(w *world.World, sp *world.SpawnerEntity) {
	t.governor.OnTick(w, sp)
}

func (t *Tweaks) MobSpawning(ev spawner.SpawnEvent) {
	t.governor.OnSpawn(ev)
}

func (t *Tweaks) RightClickBlock(ev *spawner.InteractEvent) {
	t.governor.OnRightClickBlock(ev)
}

func (t *Tweaks) BlockBreak(ev *spawner.BreakEvent) {
	t.governor.OnBlockBreak(ev)
}

func (t *Tweaks) PlayerLoggedIn(_ *world.World, _ *world.Player) {
	t.stack.OnPlayerLoggedIn()
}

func (t *Tweaks) WorldSave(_ *world.World) {
	ctx, cancel := storageContext()
	defer cancel()
	if err := t.table.Flush(ctx); err != nil {
		t.log.Warn("Не удалось сохранить счётчики спаунеров: %v", err)
	}
}
