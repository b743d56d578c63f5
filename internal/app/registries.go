package app

import (
	"github.com/annel0/blockverse-tweaks/internal/registry"
	"github.com/annel0/blockverse-tweaks/internal/resource"
)

// Registries - реестры предметов и тегов хоста
type Registries struct {
	Items      *registry.Items
	ItemTags   *registry.ItemTags
	EntityTags *registry.EntityTags
}

func mc(path string) resource.Location {
	return resource.New("minecraft", path)
}

// DefaultRegistries заполняет реестры набором ванильных предметов и тегов
func DefaultRegistries() Registries {
	items := registry.NewItems()
	for _, def := range []struct {
		path string
		size int
	}{
		{"diamond", 64}, {"iron_ingot", 64}, {"nether_star", 64}, {"rotten_flesh", 64},
		{"ender_pearl", 16}, {"egg", 16}, {"snowball", 16}, {"bucket", 16},
		{"oak_sign", 16}, {"spruce_sign", 16}, {"white_banner", 16}, {"red_banner", 16},
		{"potion", 1}, {"totem_of_undying", 1}, {"saddle", 1}, {"water_bucket", 1},
	} {
		items.Register(registry.NewItem(mc(def.path), def.size))
	}

	itemTags := registry.NewItemTags()
	member := func(paths ...string) []*registry.Item {
		out := make([]*registry.Item, 0, len(paths))
		for _, p := range paths {
			if item, ok := items.Item(mc(p)); ok {
				out = append(out, item)
			}
		}
		return out
	}
	itemTags.Add(mc("signs"), member("oak_sign", "spruce_sign")...)
	itemTags.Add(mc("banners"), member("white_banner", "red_banner")...)

	entityTags := registry.NewEntityTags()
	entityTags.Add(mc("skeletons"), mc("skeleton"), mc("stray"), mc("wither_skeleton"))
	entityTags.Add(mc("raiders"), mc("pillager"), mc("vindicator"), mc("evoker"), mc("witch"))
	entityTags.Add(mc("arthropod"), mc("spider"), mc("cave_spider"), mc("silverfish"))

	return Registries{Items: items, ItemTags: itemTags, EntityTags: entityTags}
}
