package spawner

import (
	"github.com/annel0/blockverse-tweaks/internal/matcher"
	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// Settings - неизменяемый снимок настроек временных спаунеров.
// Меняется целиком через Governor.Apply при загрузке/перезагрузке конфигурации.
type Settings struct {
	Enabled              bool
	MinSpawnableMobs     int
	Multiplier           float64
	BonusExperience      bool
	Reagent              *resource.Location
	Blacklist            []matcher.Matcher
	BlacklistAsWhitelist bool
}

// DefaultSettings возвращает значения по умолчанию
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		MinSpawnableMobs: 25,
		Multiplier:       1.0,
		BonusExperience:  true,
	}
}
