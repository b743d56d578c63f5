package stacksize

import (
	"github.com/annel0/blockverse-tweaks/internal/registry"
	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// ItemLookup - реестр предметов хоста
type ItemLookup interface {
	Item(id resource.Location) (*registry.Item, bool)
}

// ItemTagLookup - коллекция тегов предметов хоста
type ItemTagLookup interface {
	ItemTag(tag resource.Location) ([]*registry.Item, bool)
}

// Table - набор правил, применяемых к общим метаданным реестра предметов
type Table struct {
	Rules []Rule
}

// Apply перезаписывает размеры стаков. Правила с неизвестным предметом или тегом
// пропускаются молча (мод может отсутствовать). Возвращает число изменённых предметов.
func (t Table) Apply(items ItemLookup, tags ItemTagLookup) int {
	changed := 0
	for _, rule := range t.Rules {
		size := Clamp(rule.StackSize)
		switch {
		case rule.Tag != nil:
			if tags == nil {
				continue
			}
			members, ok := tags.ItemTag(*rule.Tag)
			if !ok {
				continue
			}
			for _, item := range members {
				item.SetMaxStackSize(size)
				changed++
			}
		case rule.Item != nil:
			if items == nil {
				continue
			}
			item, ok := items.Item(*rule.Item)
			if !ok {
				continue
			}
			item.SetMaxStackSize(size)
			changed++
		}
	}
	return changed
}
