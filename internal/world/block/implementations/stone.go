package implementations

import (
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// StoneBehavior реализует поведение блока камня
type StoneBehavior struct{}

// ID возвращает идентификатор блока
func (b *StoneBehavior) ID() block.BlockID {
	return block.StoneBlockID
}

// Name возвращает имя блока
func (b *StoneBehavior) Name() resource.Location {
	return resource.New("minecraft", "stone")
}

// HasBlockEntity - камень статичен
func (b *StoneBehavior) HasBlockEntity() bool {
	return false
}

// BaseExperience - камень опыта не даёт
func (b *StoneBehavior) BaseExperience() int {
	return 0
}

// CreateMetadata создает начальные метаданные для блока
func (b *StoneBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{
		"hardness": 10,
	}
}
