package spawner

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// Logic - логика спавна блок-сущности хоста. Состояние читается и пишется
// только через сериализацию: Save пишет поля в тег, Load применяет тег.
type Logic interface {
	Save(tag block.Metadata)
	Load(tag block.Metadata)
}

// Spawner - блок-сущность спаунера в мире хоста
type Spawner interface {
	Pos() vec.Vec3
	Logic() Logic
}

// World - то, что governor читает из мира хоста
type World interface {
	IsClientSide() bool
	Dimension() resource.Location
	SpawnPoint() vec.Vec3
	BlockAt(pos vec.Vec3) block.BlockID
	SpawnerAt(pos vec.Vec3) (Spawner, bool)
	AddParticle(kind string, pos vec.Vec3Float, velocity vec.Vec3Float)
	Random() *rand.Rand
}

// Key - стабильный идентификатор экземпляра спаунера: измерение + позиция
type Key struct {
	Dimension resource.Location
	Pos       vec.Vec3
}

// KeyOf строит ключ спаунера в мире
func KeyOf(w World, s Spawner) Key {
	return Key{Dimension: w.Dimension(), Pos: s.Pos()}
}

// String возвращает ключ хранилища вида "minecraft:overworld/x/y/z"
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", k.Dimension, k.Pos.X, k.Pos.Y, k.Pos.Z)
}

// ParseKey разбирает ключ, полученный из Key.String.
// Координаты - три последних сегмента, всё до них - измерение.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 4 {
		return Key{}, fmt.Errorf("недопустимый ключ спаунера %q", s)
	}
	n := len(parts)
	coords := make([]int, 3)
	for i, raw := range parts[n-3:] {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Key{}, fmt.Errorf("недопустимая координата в ключе %q: %w", s, err)
		}
		coords[i] = v
	}
	dim, ok := resource.TryParse(strings.Join(parts[:n-3], "/"))
	if !ok {
		return Key{}, fmt.Errorf("недопустимое измерение в ключе %q", s)
	}
	return Key{Dimension: dim, Pos: vec.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}}, nil
}
