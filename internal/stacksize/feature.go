package stacksize

import (
	"sync"

	"github.com/annel0/blockverse-tweaks/internal/logging"
)

// Feature - «Custom Stack Size»: применяет таблицу при первом входе игрока
type Feature struct {
	mu      sync.RWMutex
	enabled bool
	table   Table
	latch   *Latch
	items   ItemLookup
	tags    ItemTagLookup
	onApply func(changed int)
}

// NewFeature создаёт функцию над реестрами хоста с общей для процесса защёлкой
func NewFeature(items ItemLookup, tags ItemTagLookup, latch *Latch) *Feature {
	if latch == nil {
		latch = &Latch{}
	}
	return &Feature{enabled: true, items: items, tags: tags, latch: latch}
}

// Configure задаёт флаг включения и правила (загрузка конфигурации)
func (f *Feature) Configure(enabled bool, rules []Rule) {
	f.mu.Lock()
	f.enabled = enabled
	f.table = Table{Rules: rules}
	f.mu.Unlock()
}

// OnApplied задаёт обратный вызов после применения (метрики, шина событий)
func (f *Feature) OnApplied(fn func(changed int)) {
	f.mu.Lock()
	f.onApply = fn
	f.mu.Unlock()
}

// Rules возвращает текущие правила
func (f *Feature) Rules() []Rule {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Rule, len(f.table.Rules))
	copy(out, f.table.Rules)
	return out
}

// Processed сообщает, что таблица уже применена в этом процессе
func (f *Feature) Processed() bool {
	return f.latch.Done()
}

// OnPlayerLoggedIn срабатывает при каждом входе игрока; эффект имеет только первый вызов.
// Если функция выключена или правил нет, защёлка не расходуется.
func (f *Feature) OnPlayerLoggedIn() {
	f.mu.RLock()
	enabled, table, onApply := f.enabled, f.table, f.onApply
	f.mu.RUnlock()

	if !enabled || len(table.Rules) == 0 {
		return
	}
	if !f.latch.TryRun() {
		return
	}

	changed := table.Apply(f.items, f.tags)
	logging.Info("Размеры стаков применены: %d правил, %d предметов изменено", len(table.Rules), changed)
	if onApply != nil {
		onApply(changed)
	}
}
