package spawner

import (
	"context"
	"sort"
	"sync"

	"github.com/annel0/blockverse-tweaks/internal/logging"
)

// State - прикреплённое к спаунеру состояние: сколько мобов он создал с последнего сброса
type State interface {
	SpawnedMobs() int
	AddSpawnedMobs(n int)
	SetSpawnedMobs(n int)
}

// Repository - постоянное хранилище счётчиков (реализации в пакете store)
type Repository interface {
	Load(ctx context.Context, key string) (int, bool, error)
	Delete(ctx context.Context, key string) error
	BatchSave(ctx context.Context, counts map[string]int) error
}

// Entry - снимок состояния одного спаунера
type Entry struct {
	Key         Key
	SpawnedMobs int
}

// Table - боковая таблица состояний спаунеров, ключ - идентичность спаунера.
// Жизненный цикл повторяет хоста: Attach при создании/загрузке блок-сущности,
// Detach при выгрузке, Remove при разрушении блока.
type Table struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	repo    Repository
}

type entry struct {
	table   *Table
	spawned int
	dirty   bool
}

// NewTable создаёт таблицу. repo может быть nil - тогда состояние живёт только в памяти.
func NewTable(repo Repository) *Table {
	return &Table{
		entries: make(map[Key]*entry),
		repo:    repo,
	}
}

// Attach прикрепляет состояние к спаунеру, подгружая сохранённый счётчик
func (t *Table) Attach(ctx context.Context, key Key) State {
	t.mu.RLock()
	e, ok := t.entries[key]
	t.mu.RUnlock()
	if ok {
		return e
	}

	spawned := 0
	if t.repo != nil {
		n, found, err := t.repo.Load(ctx, key.String())
		if err != nil {
			logging.Warn("Не удалось загрузить состояние спаунера %s: %v", key, err)
		} else if found && n > 0 {
			spawned = n
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[key]; ok {
		return e
	}
	e = &entry{table: t, spawned: spawned}
	t.entries[key] = e
	return e
}

// Get возвращает состояние спаунера; false, если оно не прикреплено
func (t *Table) Get(key Key) (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	return e, true
}

// Detach сохраняет состояние выгружаемого спаунера и забывает его
func (t *Table) Detach(ctx context.Context, key Key) error {
	t.mu.Lock()
	e, ok := t.entries[key]
	delete(t.entries, key)
	t.mu.Unlock()
	if !ok || t.repo == nil || !e.dirty {
		return nil
	}
	return t.repo.BatchSave(ctx, map[string]int{key.String(): e.spawned})
}

// Remove забывает состояние разрушенного спаунера и удаляет его из хранилища
func (t *Table) Remove(ctx context.Context, key Key) error {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
	if t.repo == nil {
		return nil
	}
	return t.repo.Delete(ctx, key.String())
}

// Flush сохраняет все изменённые состояния одним батчем
func (t *Table) Flush(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}

	t.mu.Lock()
	batch := make(map[string]int)
	flushed := make(map[*entry]int)
	for key, e := range t.entries {
		if e.dirty {
			batch[key.String()] = e.spawned
			flushed[e] = e.spawned
		}
	}
	t.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := t.repo.BatchSave(ctx, batch); err != nil {
		return err
	}

	// Счётчик, изменённый во время записи, остаётся грязным до следующего Flush
	t.mu.Lock()
	for e, saved := range flushed {
		if e.spawned == saved {
			e.dirty = false
		}
	}
	t.mu.Unlock()
	return nil
}

// Len возвращает число прикреплённых состояний
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Snapshot возвращает копию всех состояний, отсортированную по ключу
func (t *Table) Snapshot() []Entry {
	t.mu.RLock()
	out := make([]Entry, 0, len(t.entries))
	for key, e := range t.entries {
		out = append(out, Entry{Key: key, SpawnedMobs: e.spawned})
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

func (e *entry) SpawnedMobs() int {
	e.table.mu.RLock()
	defer e.table.mu.RUnlock()
	return e.spawned
}

func (e *entry) AddSpawnedMobs(n int) {
	if n <= 0 {
		return
	}
	e.table.mu.Lock()
	e.spawned += n
	e.dirty = true
	e.table.mu.Unlock()
}

func (e *entry) SetSpawnedMobs(n int) {
	if n < 0 {
		n = 0
	}
	e.table.mu.Lock()
	e.spawned = n
	e.dirty = true
	e.table.mu.Unlock()
}
