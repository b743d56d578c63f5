package registry

import (
	"sync"

	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// ItemTags - коллекция тегов предметов (#forge:stone → набор предметов)
type ItemTags struct {
	mu   sync.RWMutex
	tags map[resource.Location][]*Item
}

// NewItemTags создаёт пустую коллекцию тегов предметов
func NewItemTags() *ItemTags {
	return &ItemTags{tags: make(map[resource.Location][]*Item)}
}

// Add добавляет предметы в тег, создавая его при необходимости
func (t *ItemTags) Add(tag resource.Location, items ...*Item) {
	t.mu.Lock()
	t.tags[tag] = append(t.tags[tag], items...)
	t.mu.Unlock()
}

// ItemTag возвращает элементы тега; false, если тег не существует
func (t *ItemTags) ItemTag(tag resource.Location) ([]*Item, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	items, ok := t.tags[tag]
	if !ok {
		return nil, false
	}
	out := make([]*Item, len(items))
	copy(out, items)
	return out, true
}

// EntityTags - коллекция тегов типов сущностей (#minecraft:raiders → типы)
type EntityTags struct {
	mu   sync.RWMutex
	tags map[resource.Location]map[resource.Location]struct{}
}

// NewEntityTags создаёт пустую коллекцию тегов сущностей
func NewEntityTags() *EntityTags {
	return &EntityTags{tags: make(map[resource.Location]map[resource.Location]struct{})}
}

// Add добавляет типы сущностей в тег
func (t *EntityTags) Add(tag resource.Location, entityTypes ...resource.Location) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members, ok := t.tags[tag]
	if !ok {
		members = make(map[resource.Location]struct{})
		t.tags[tag] = members
	}
	for _, et := range entityTypes {
		members[et] = struct{}{}
	}
}

// EntityHasTag сообщает, входит ли тип сущности в тег. Неизвестный тег - false.
func (t *EntityTags) EntityHasTag(tag, entityType resource.Location) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.tags[tag][entityType]
	return ok
}
