package spawner

import "github.com/annel0/blockverse-tweaks/internal/world/block"

// Ключи полей логики спаунера, которые используются как флаг активности
const (
	KeyMaxNearbyEntities   = "MaxNearbyEntities"
	KeyRequiredPlayerRange = "RequiredPlayerRange"
)

// Значения полей для активного спаунера (значения хоста по умолчанию)
const (
	ActiveMaxNearbyEntities   int16 = 6
	ActiveRequiredPlayerRange int16 = 16
)

// Activation - состояние спаунера с точки зрения governor
type Activation uint8

const (
	Active Activation = iota
	Disabled
)

func (a Activation) String() string {
	if a == Disabled {
		return "disabled"
	}
	return "active"
}

// ReadActivation декодирует состояние из полей логики хоста:
// оба поля равны нулю - спаунер отключён, иначе активен.
func ReadActivation(l Logic) Activation {
	tag := block.Metadata{}
	l.Save(tag)
	if tag.Short(KeyMaxNearbyEntities) == 0 && tag.Short(KeyRequiredPlayerRange) == 0 {
		return Disabled
	}
	return Active
}

// WriteActivation кодирует состояние в поля логики (запись → изменение → чтение)
func WriteActivation(l Logic, a Activation) {
	tag := block.Metadata{}
	l.Save(tag)
	switch a {
	case Disabled:
		tag.PutShort(KeyMaxNearbyEntities, 0)
		tag.PutShort(KeyRequiredPlayerRange, 0)
	default:
		tag.PutShort(KeyMaxNearbyEntities, ActiveMaxNearbyEntities)
		tag.PutShort(KeyRequiredPlayerRange, ActiveRequiredPlayerRange)
	}
	l.Load(tag)
}
