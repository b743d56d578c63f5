package spawner

import "math"

// MaxSpawned возвращает число мобов, после которого спаунер отключается:
// (min + distance/8) * multiplier с отбрасыванием дробной части.
// На 160 блоках от точки спавна при min=25 и multiplier=1: 25 + 20 = 45.
func MaxSpawned(distance float64, minSpawnableMobs int, multiplier float64) int {
	return truncate((float64(minSpawnableMobs) + distance/8) * multiplier)
}

// BonusExperience увеличивает опыт за разрушение спаунера на 100% за каждые 1024 блока
func BonusExperience(baseExp int, distance float64) int {
	return truncate(float64(baseExp) * (1 + distance/1024))
}

// truncate отбрасывает дробную часть с насыщением: int(f) вне диапазона int не определён
func truncate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}
