package app

import (
	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/feature"
	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/matcher"
	"github.com/annel0/blockverse-tweaks/internal/registry"
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
	"github.com/annel0/blockverse-tweaks/internal/stacksize"
)

// Имена модулей
const (
	ModuleMisc      = "misc"
	ModuleStackSize = "stacksize"
)

// TemporarySpawners - спаунеры отключаются, создав лимит мобов
type TemporarySpawners struct {
	feature.Base
	governor *spawner.Governor
	items    *registry.Items
}

// NewTemporarySpawners создаёт функцию над governor
func NewTemporarySpawners(g *spawner.Governor, items *registry.Items) *TemporarySpawners {
	return &TemporarySpawners{
		Base:     feature.NewBase("Temporary Spawners", "Spawners are disabled after spawning a certain amount of mobs"),
		governor: g,
		items:    items,
	}
}

// LoadConfig собирает снимок настроек и атомарно передаёт его governor
func (f *TemporarySpawners) LoadConfig(cfg *config.Config) {
	s := BuildSettings(cfg.Features.TemporarySpawners, f.items)
	f.SetEnabled(s.Enabled)
	f.governor.Apply(s)
}

// BuildSettings переводит секцию конфигурации в Settings.
// Ошибочные записи списка и неизвестный реагент логируются и отбрасываются.
func BuildSettings(c config.TemporarySpawnersConfig, items *registry.Items) spawner.Settings {
	s := spawner.Settings{
		Enabled:              c.Enabled,
		MinSpawnableMobs:     c.MinSpawnableMobs,
		Multiplier:           c.Multiplier,
		BonusExperience:      c.BonusExperience,
		Blacklist:            matcher.ParseList(c.EntityBlacklist),
		BlacklistAsWhitelist: c.EntityBlacklistAsWhitelist,
	}
	if s.MinSpawnableMobs < 0 {
		s.MinSpawnableMobs = 0
	}
	if s.Multiplier < 0 {
		s.Multiplier = 0
	}
	s.Reagent = resolveReagent(c.ReagentItem, items)
	return s
}

func resolveReagent(id string, items *registry.Items) *resource.Location {
	if id == "" {
		return nil
	}
	loc, ok := resource.TryParse(id)
	if !ok {
		logging.Warn("Некорректный реагент спаунера %q", id)
		return nil
	}
	if items != nil && !items.Contains(loc) {
		logging.Warn("Реагент спаунера %s не найден в реестре предметов", loc)
		return nil
	}
	return &loc
}

// CustomStackSize - переопределение максимального размера стаков
type CustomStackSize struct {
	feature.Base
	stack *stacksize.Feature
}

// NewCustomStackSize оборачивает stacksize.Feature
func NewCustomStackSize(stack *stacksize.Feature) *CustomStackSize {
	return &CustomStackSize{
		Base:  feature.NewBase("Custom Stack Size", "Allows to change the max stack size of items"),
		stack: stack,
	}
}

// LoadConfig разбирает правила. Уже применённая таблица не откатывается.
func (f *CustomStackSize) LoadConfig(cfg *config.Config) {
	c := cfg.Features.CustomStackSize
	rules := stacksize.ParseRules(c.CustomStackSizes)
	f.SetEnabled(c.Enabled)
	f.stack.Configure(c.Enabled, rules)
}
