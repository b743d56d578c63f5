package world

import (
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
	"github.com/annel0/blockverse-tweaks/internal/vec"
)

// Mob - заспавненная сущность
type Mob struct {
	ID      uint64
	Type    resource.Location
	Pos     vec.Vec3Float
	Spawner *vec.Vec3 // позиция спаунера-источника, nil для естественного спавна
}

// Player - игрок в мире
type Player struct {
	Name   string
	Pos    vec.Vec3Float
	Swings int
}

// Swing анимирует взмах рукой
func (p *Player) Swing(hand spawner.Hand) {
	p.Swings++
}

// Particle - частица, отправленная в мир
type Particle struct {
	Kind     string
	Pos      vec.Vec3Float
	Velocity vec.Vec3Float
}
