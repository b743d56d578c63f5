package block

import (
	"sync"

	"github.com/annel0/blockverse-tweaks/internal/resource"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[BlockID]BlockBehavior)
	byName     = make(map[resource.Location]BlockID)
)

// Register добавляет поведение блока в регистр
func Register(id BlockID, behavior BlockBehavior) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = behavior
	byName[behavior.Name()] = id
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (BlockBehavior, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	behavior, exists := registry[id]
	return behavior, exists
}

// Lookup возвращает ID блока по идентификатору ресурса ("minecraft:spawner")
func Lookup(name resource.Location) (BlockID, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	id, exists := byName[name]
	return id, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := Get(id)
	return exists
}

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID   BlockID = iota // 0
	StoneBlockID                // 1

	// Специальные блоки (начиная с 1000)
	SpawnerBlockID BlockID = 1001 // Спаунер мобов
)
