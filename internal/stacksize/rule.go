// Package stacksize переопределяет максимальный размер стака предметов
// по идентификатору или тегу. Применяется один раз за жизнь процесса.
package stacksize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// Границы допустимого размера стака
const (
	MinStackSize = 1
	MaxStackSize = 64
)

// ErrInvalidRule возвращается для строк, не подходящих под "id,size" / "#tag,size"
var ErrInvalidRule = errors.New("недопустимое правило размера стака")

// Rule - правило: предмет или тег и желаемый размер стака
type Rule struct {
	Item      *resource.Location
	Tag       *resource.Location
	StackSize int
}

// Clamp ограничивает размер стака диапазоном [1, 64]
func Clamp(n int) int {
	if n < MinStackSize {
		return MinStackSize
	}
	if n > MaxStackSize {
		return MaxStackSize
	}
	return n
}

// ParseRule разбирает строку "modid:item,16" или "#modid:tag,16"
func ParseRule(line string) (Rule, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRule, line)
	}

	size, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %q (размер): %v", ErrInvalidRule, line, err)
	}

	id := strings.TrimSpace(parts[0])
	isTag := strings.HasPrefix(id, "#")
	if isTag {
		id = id[1:]
	}
	loc, ok := resource.TryParse(id)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q (идентификатор)", ErrInvalidRule, line)
	}

	rule := Rule{StackSize: size}
	if isTag {
		rule.Tag = &loc
	} else {
		rule.Item = &loc
	}
	return rule, nil
}

// ParseRules разбирает список правил; некорректные строки логируются и пропускаются
func ParseRules(lines []string) []Rule {
	rules := make([]Rule, 0, len(lines))
	for _, line := range lines {
		rule, err := ParseRule(line)
		if err != nil {
			logging.Warn("Правило размера стака пропущено: %v", err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// String возвращает правило в исходной грамматике
func (r Rule) String() string {
	switch {
	case r.Tag != nil:
		return fmt.Sprintf("#%s,%d", r.Tag, r.StackSize)
	case r.Item != nil:
		return fmt.Sprintf("%s,%d", r.Item, r.StackSize)
	default:
		return fmt.Sprintf(",%d", r.StackSize)
	}
}
