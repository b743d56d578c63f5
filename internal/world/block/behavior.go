package block

import (
	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// Metadata - сериализованное состояние блока/блок-сущности (аналог NBT-тега)
type Metadata map[string]interface{}

// Short читает 16-битное значение, терпимо относясь к числовому типу
// (после JSON-раунда значения приходят как float64)
func (m Metadata) Short(key string) int16 {
	switch v := m[key].(type) {
	case int16:
		return v
	case int:
		return int16(v)
	case int32:
		return int16(v)
	case int64:
		return int16(v)
	case float64:
		return int16(v)
	default:
		return 0
	}
}

// PutShort записывает 16-битное значение
func (m Metadata) PutShort(key string, v int16) {
	m[key] = v
}

// String читает строковое значение
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// BlockBehavior определяет поведение типа блока
type BlockBehavior interface {
	ID() BlockID
	Name() resource.Location
	// HasBlockEntity сообщает, что блок несёт собственную логику/состояние (спаунер)
	HasBlockEntity() bool
	// BaseExperience - опыт, выпадающий при разрушении
	BaseExperience() int
	CreateMetadata() Metadata
}
