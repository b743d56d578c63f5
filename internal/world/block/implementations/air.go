package implementations

import (
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// AirBehavior - пустота
type AirBehavior struct{}

func (b *AirBehavior) ID() block.BlockID              { return block.AirBlockID }
func (b *AirBehavior) Name() resource.Location        { return resource.New("minecraft", "air") }
func (b *AirBehavior) HasBlockEntity() bool           { return false }
func (b *AirBehavior) BaseExperience() int            { return 0 }
func (b *AirBehavior) CreateMetadata() block.Metadata { return block.Metadata{} }
