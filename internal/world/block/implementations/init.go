package implementations

import "github.com/annel0/blockverse-tweaks/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	block.Register(block.AirBlockID, &AirBehavior{})
	block.Register(block.StoneBlockID, &StoneBehavior{})
	block.Register(block.SpawnerBlockID, &SpawnerBehavior{})
}
