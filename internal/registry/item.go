package registry

import (
	"sort"
	"sync"

	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// DefaultMaxStackSize - размер стака предмета по умолчанию
const DefaultMaxStackSize = 64

// Item описывает тип предмета в реестре хоста.
// Максимальный размер стака - общие для всего процесса метаданные типа.
type Item struct {
	ID           resource.Location
	maxStackSize int
}

// NewItem создаёт тип предмета с заданным размером стака (0 - значение по умолчанию)
func NewItem(id resource.Location, maxStackSize int) *Item {
	if maxStackSize <= 0 {
		maxStackSize = DefaultMaxStackSize
	}
	return &Item{ID: id, maxStackSize: maxStackSize}
}

// MaxStackSize возвращает максимальный размер стака
func (i *Item) MaxStackSize() int {
	return i.maxStackSize
}

// SetMaxStackSize перезаписывает максимальный размер стака
func (i *Item) SetMaxStackSize(n int) {
	i.maxStackSize = n
}

// Items - реестр предметов по идентификатору
type Items struct {
	mu    sync.RWMutex
	items map[resource.Location]*Item
}

// NewItems создаёт пустой реестр предметов
func NewItems() *Items {
	return &Items{items: make(map[resource.Location]*Item)}
}

// Register добавляет предмет в реестр (повторная регистрация заменяет запись)
func (r *Items) Register(item *Item) *Item {
	r.mu.Lock()
	r.items[item.ID] = item
	r.mu.Unlock()
	return item
}

// Item возвращает предмет по идентификатору
func (r *Items) Item(id resource.Location) (*Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok
}

// Contains сообщает, зарегистрирован ли предмет
func (r *Items) Contains(id resource.Location) bool {
	_, ok := r.Item(id)
	return ok
}

// All возвращает все предметы, отсортированные по идентификатору
func (r *Items) All() []*Item {
	r.mu.RLock()
	out := make([]*Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}
