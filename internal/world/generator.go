package world

import (
	"math/rand"

	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/util"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// Generator расставляет спаунеры («данжи») по шуму Перлина
type Generator struct {
	Seed       int64
	NoiseScale float64 // Масштаб шума
	Threshold  float64 // Спаунер ставится там, где шум выше порога
	CellSize   int     // Не больше одного спаунера на клетку CellSize×CellSize
	Floor      int     // Высота пола
	// MaxSpawners ограничивает число спаунеров; 0 - без ограничения
	MaxSpawners int
	Mobs        []resource.Location

	noise *util.Noise
}

// NewGenerator создаёт генератор с настройками по умолчанию
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:       seed,
		NoiseScale: 0.08,
		Threshold:  0.62,
		CellSize:   16,
		Floor:      40,
		Mobs: []resource.Location{
			resource.New("minecraft", "zombie"),
			resource.New("minecraft", "skeleton"),
			resource.New("minecraft", "spider"),
			resource.New("minecraft", "cave_spider"),
		},
		noise: util.NewNoise(seed),
	}
}

// Populate заполняет квадрат радиуса radius вокруг центра полом из камня
// и спаунерами. Возвращает позиции поставленных спаунеров.
func (g *Generator) Populate(w *World, center vec.Vec2, radius int) []vec.Vec3 {
	cell := g.CellSize
	if cell <= 0 {
		cell = 16
	}
	var placed []vec.Vec3

	for cx := center.X - radius; cx < center.X+radius; cx += cell {
		for cz := center.Y - radius; cz < center.Y+radius; cz += cell {
			// Детерминированный генератор на клетку, как для чанков
			cellSeed := g.Seed + int64(cx*31) + int64(cz*17)
			rng := rand.New(rand.NewSource(cellSeed))

			x := cx + rng.Intn(cell)
			z := cz + rng.Intn(cell)
			if g.MaxSpawners > 0 && len(placed) >= g.MaxSpawners {
				return placed
			}
			if g.noise.Noise2D(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale) < g.Threshold {
				continue
			}

			pos := vec.Vec3{X: x, Y: g.Floor + 1, Z: z}
			w.SetBlock(vec.Vec3{X: x, Y: g.Floor, Z: z}, block.StoneBlockID)

			mob := resource.New("minecraft", "pig")
			if len(g.Mobs) > 0 {
				mob = g.Mobs[rng.Intn(len(g.Mobs))]
			}
			w.PlaceSpawner(pos, mob)
			placed = append(placed, pos)
		}
	}
	return placed
}
