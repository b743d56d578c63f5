package world

import (
	"math/rand"

	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
	"github.com/annel0/blockverse-tweaks/internal/world/block/implementations"
)

// SpawnerLogic - логика спавна блок-сущности спаунера.
// Поля закрыты: снаружи состояние доступно только через Save/Load.
type SpawnerLogic struct {
	delay               int16
	minSpawnDelay       int16
	maxSpawnDelay       int16
	spawnCount          int16
	maxNearbyEntities   int16
	requiredPlayerRange int16
	spawnRange          int16
	spawnData           resource.Location
}

// NewSpawnerLogic создаёт логику со значениями по умолчанию для указанного моба
func NewSpawnerLogic(entityType resource.Location) *SpawnerLogic {
	l := &SpawnerLogic{}
	tag := (&implementations.SpawnerBehavior{}).CreateMetadata()
	if !entityType.IsZero() {
		tag["SpawnData"] = entityType.String()
	}
	l.Load(tag)
	return l
}

// Save записывает поля логики в тег
func (l *SpawnerLogic) Save(tag block.Metadata) {
	tag.PutShort("Delay", l.delay)
	tag.PutShort("MinSpawnDelay", l.minSpawnDelay)
	tag.PutShort("MaxSpawnDelay", l.maxSpawnDelay)
	tag.PutShort("SpawnCount", l.spawnCount)
	tag.PutShort(spawner.KeyMaxNearbyEntities, l.maxNearbyEntities)
	tag.PutShort(spawner.KeyRequiredPlayerRange, l.requiredPlayerRange)
	tag.PutShort("SpawnRange", l.spawnRange)
	tag["SpawnData"] = l.spawnData.String()
}

// Load применяет тег; отсутствующие ключи оставляют поле без изменений
func (l *SpawnerLogic) Load(tag block.Metadata) {
	load := func(key string, dst *int16) {
		if _, ok := tag[key]; ok {
			*dst = tag.Short(key)
		}
	}
	load("Delay", &l.delay)
	load("MinSpawnDelay", &l.minSpawnDelay)
	load("MaxSpawnDelay", &l.maxSpawnDelay)
	load("SpawnCount", &l.spawnCount)
	load(spawner.KeyMaxNearbyEntities, &l.maxNearbyEntities)
	load(spawner.KeyRequiredPlayerRange, &l.requiredPlayerRange)
	load("SpawnRange", &l.spawnRange)
	if loc, ok := resource.TryParse(tag.String("SpawnData")); ok {
		l.spawnData = loc
	}
}

// EntityType возвращает тип создаваемого моба
func (l *SpawnerLogic) EntityType() resource.Location {
	return l.spawnData
}

// isNearPlayer - в радиусе RequiredPlayerRange есть игрок (строго меньше радиуса)
func (l *SpawnerLogic) isNearPlayer(w *World, pos vec.Vec3) bool {
	center := centerOf(pos)
	limit := float64(l.requiredPlayerRange)
	for _, p := range w.playerList() {
		if p.Pos.DistanceTo(center) < limit {
			return true
		}
	}
	return false
}

// serverTick повторяет цикл спаунера: задержка, проверка соседей, попытки спавна
func (l *SpawnerLogic) serverTick(w *World, sp *SpawnerEntity) {
	if !l.isNearPlayer(w, sp.pos) {
		return
	}
	if l.delay == -1 {
		l.resetDelay(w.rng)
	}
	if l.delay > 0 {
		l.delay--
		return
	}

	spawned := false
	center := centerOf(sp.pos)
	for i := int16(0); i < l.spawnCount; i++ {
		nearby := w.countMobs(l.spawnData, center, float64(l.spawnRange)+1)
		if nearby >= int(l.maxNearbyEntities) {
			break
		}
		r := float64(l.spawnRange)
		at := vec.Vec3Float{
			X: center.X + (w.rng.Float64()-w.rng.Float64())*r,
			Y: float64(sp.pos.Y + w.rng.Intn(3) - 1),
			Z: center.Z + (w.rng.Float64()-w.rng.Float64())*r,
		}
		w.spawnMob(l.spawnData, at, sp)
		spawned = true
	}
	if spawned {
		l.resetDelay(w.rng)
	}
}

func (l *SpawnerLogic) resetDelay(rng *rand.Rand) {
	if l.maxSpawnDelay <= l.minSpawnDelay {
		l.delay = l.minSpawnDelay
		return
	}
	l.delay = l.minSpawnDelay + int16(rng.Intn(int(l.maxSpawnDelay-l.minSpawnDelay)))
}

// SpawnerEntity - блок-сущность спаунера в мире
type SpawnerEntity struct {
	pos   vec.Vec3
	logic *SpawnerLogic
}

// Pos возвращает позицию блока
func (s *SpawnerEntity) Pos() vec.Vec3 { return s.pos }

// Logic возвращает логику спавна
func (s *SpawnerEntity) Logic() spawner.Logic { return s.logic }

// SpawnerLogic возвращает конкретную логику (для демо и тестов)
func (s *SpawnerEntity) SpawnerLogic() *SpawnerLogic { return s.logic }

func centerOf(pos vec.Vec3) vec.Vec3Float {
	return vec.Vec3Float{X: float64(pos.X) + 0.5, Y: float64(pos.Y) + 0.5, Z: float64(pos.Z) + 0.5}
}
