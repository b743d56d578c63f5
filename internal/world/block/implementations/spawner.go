package implementations

import (
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// Значения логики спаунера по умолчанию
const (
	DefaultSpawnDelay          int16 = 20
	DefaultMinSpawnDelay       int16 = 200
	DefaultMaxSpawnDelay       int16 = 800
	DefaultSpawnCount          int16 = 4
	DefaultMaxNearbyEntities   int16 = 6
	DefaultRequiredPlayerRange int16 = 16
	DefaultSpawnRange          int16 = 4
)

// SpawnerBehavior - блок спаунера мобов. Несёт блок-сущность с логикой спавна.
type SpawnerBehavior struct{}

// ID возвращает идентификатор блока
func (b *SpawnerBehavior) ID() block.BlockID {
	return block.SpawnerBlockID
}

// Name возвращает имя блока
func (b *SpawnerBehavior) Name() resource.Location {
	return resource.New("minecraft", "spawner")
}

// HasBlockEntity - у спаунера есть логика спавна
func (b *SpawnerBehavior) HasBlockEntity() bool {
	return true
}

// BaseExperience - спаунер даёт 15–43 опыта, берём среднее
func (b *SpawnerBehavior) BaseExperience() int {
	return 29
}

// CreateMetadata создаёт сериализованную логику спаунера со значениями по умолчанию
func (b *SpawnerBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{
		"Delay":               DefaultSpawnDelay,
		"MinSpawnDelay":       DefaultMinSpawnDelay,
		"MaxSpawnDelay":       DefaultMaxSpawnDelay,
		"SpawnCount":          DefaultSpawnCount,
		"MaxNearbyEntities":   DefaultMaxNearbyEntities,
		"RequiredPlayerRange": DefaultRequiredPlayerRange,
		"SpawnRange":          DefaultSpawnRange,
		"SpawnData":           "minecraft:pig",
	}
}
