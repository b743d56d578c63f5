package spawner

import (
	"math/rand"

	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

var (
	overworld = resource.MustParse("minecraft:overworld")
	zombie    = resource.MustParse("minecraft:zombie")
	skeleton  = resource.MustParse("minecraft:skeleton")
	pearl     = resource.MustParse("minecraft:ender_pearl")
)

// fakeLogic хранит поля логики как сериализованный тег
type fakeLogic struct {
	tag block.Metadata
}

func newFakeLogic() *fakeLogic {
	return &fakeLogic{tag: block.Metadata{
		KeyMaxNearbyEntities:   ActiveMaxNearbyEntities,
		KeyRequiredPlayerRange: ActiveRequiredPlayerRange,
		"Delay":                int16(20),
	}}
}

func (l *fakeLogic) Save(tag block.Metadata) {
	for k, v := range l.tag {
		tag[k] = v
	}
}

func (l *fakeLogic) Load(tag block.Metadata) {
	l.tag = block.Metadata{}
	for k, v := range tag {
		l.tag[k] = v
	}
}

type fakeSpawner struct {
	pos   vec.Vec3
	logic *fakeLogic
}

func (s *fakeSpawner) Pos() vec.Vec3 { return s.pos }
func (s *fakeSpawner) Logic() Logic  { return s.logic }

type particle struct {
	kind string
	pos  vec.Vec3Float
}

type fakeWorld struct {
	client    bool
	spawn     vec.Vec3
	spawners  map[vec.Vec3]*fakeSpawner
	particles []particle
	rnd       *rand.Rand
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		spawners: make(map[vec.Vec3]*fakeSpawner),
		rnd:      rand.New(rand.NewSource(1)),
	}
}

func (w *fakeWorld) addSpawner(pos vec.Vec3) *fakeSpawner {
	s := &fakeSpawner{pos: pos, logic: newFakeLogic()}
	w.spawners[pos] = s
	return s
}

func (w *fakeWorld) IsClientSide() bool           { return w.client }
func (w *fakeWorld) Dimension() resource.Location { return overworld }
func (w *fakeWorld) SpawnPoint() vec.Vec3         { return w.spawn }
func (w *fakeWorld) Random() *rand.Rand           { return w.rnd }

func (w *fakeWorld) BlockAt(pos vec.Vec3) block.BlockID {
	if _, ok := w.spawners[pos]; ok {
		return block.SpawnerBlockID
	}
	return block.StoneBlockID
}

func (w *fakeWorld) SpawnerAt(pos vec.Vec3) (Spawner, bool) {
	s, ok := w.spawners[pos]
	if !ok {
		return nil, false
	}
	return s, true
}

func (w *fakeWorld) AddParticle(kind string, pos vec.Vec3Float, _ vec.Vec3Float) {
	w.particles = append(w.particles, particle{kind: kind, pos: pos})
}

type fakePlayer struct {
	swings []Hand
}

func (p *fakePlayer) Swing(h Hand) { p.swings = append(p.swings, h) }
