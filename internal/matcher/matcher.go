// Package matcher реализует правила сопоставления сущностей по типу или тегу
// (с необязательным измерением) и классификацию чёрного/белого списка.
package matcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// Kind определяет, что сопоставляет правило: конкретный тип или тег
type Kind uint8

const (
	KindID Kind = iota
	KindTag
)

// ErrInvalidLine возвращается для строк, не подходящих под грамматику id[,dimension]
var ErrInvalidLine = errors.New("недопустимая строка матчера")

// TagSource отвечает на вопрос о принадлежности типа сущности тегу (реестр тегов хоста)
type TagSource interface {
	EntityHasTag(tag, entityType resource.Location) bool
}

// Matcher - правило вида "ns:id", "#ns:tag", "ns:id,ns:dimension"
type Matcher struct {
	Kind      Kind
	Location  resource.Location
	Dimension *resource.Location
}

// ParseLine разбирает строку матчера
func ParseLine(line string) (Matcher, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) < 1 || len(parts) > 2 {
		return Matcher{}, fmt.Errorf("%w: %q", ErrInvalidLine, line)
	}

	var m Matcher
	id := strings.TrimSpace(parts[0])
	if strings.HasPrefix(id, "#") {
		m.Kind = KindTag
		id = id[1:]
	}

	loc, ok := resource.TryParse(id)
	if !ok {
		return Matcher{}, fmt.Errorf("%w: %q (идентификатор)", ErrInvalidLine, line)
	}
	m.Location = loc

	if len(parts) == 2 {
		dim, ok := resource.TryParse(parts[1])
		if !ok {
			return Matcher{}, fmt.Errorf("%w: %q (измерение)", ErrInvalidLine, line)
		}
		m.Dimension = &dim
	}

	return m, nil
}

// ParseList разбирает список строк конфигурации. Некорректные записи
// логируются предупреждением и отбрасываются, остальные сохраняют порядок.
func ParseList(lines []string) []Matcher {
	out := make([]Matcher, 0, len(lines))
	for _, line := range lines {
		m, err := ParseLine(line)
		if err != nil {
			logging.Warn("Матчер пропущен: %v", err)
			continue
		}
		out = append(out, m)
	}
	return out
}

// MatchesEntity проверяет тип сущности и текущее измерение
func (m Matcher) MatchesEntity(entityType, dimension resource.Location, tags TagSource) bool {
	if m.Dimension != nil && *m.Dimension != dimension {
		return false
	}

	switch m.Kind {
	case KindTag:
		return tags != nil && tags.EntityHasTag(m.Location, entityType)
	default:
		return m.Location == entityType
	}
}

// String возвращает строку в исходной грамматике
func (m Matcher) String() string {
	s := m.Location.String()
	if m.Kind == KindTag {
		s = "#" + s
	}
	if m.Dimension != nil {
		s += "," + m.Dimension.String()
	}
	return s
}
