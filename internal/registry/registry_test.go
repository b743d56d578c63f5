package registry

import (
	"testing"

	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsRegisterAndLookup(t *testing.T) {
	items := NewItems()
	stone := items.Register(NewItem(resource.MustParse("minecraft:stone"), 0))
	items.Register(NewItem(resource.MustParse("minecraft:ender_pearl"), 16))

	got, ok := items.Item(resource.MustParse("stone"))
	require.True(t, ok)
	assert.Same(t, stone, got)
	assert.Equal(t, DefaultMaxStackSize, got.MaxStackSize())

	assert.False(t, items.Contains(resource.MustParse("mymod:missing")))

	all := items.All()
	require.Len(t, all, 2)
	assert.Equal(t, "minecraft:ender_pearl", all[0].ID.String())
}

func TestItemTags(t *testing.T) {
	tags := NewItemTags()
	a := NewItem(resource.MustParse("minecraft:granite"), 0)
	b := NewItem(resource.MustParse("minecraft:diorite"), 0)
	tags.Add(resource.MustParse("forge:stone"), a, b)

	members, ok := tags.ItemTag(resource.MustParse("forge:stone"))
	require.True(t, ok)
	assert.Len(t, members, 2)

	_, ok = tags.ItemTag(resource.MustParse("forge:missing"))
	assert.False(t, ok)
}

func TestEntityTags(t *testing.T) {
	tags := NewEntityTags()
	raiders := resource.MustParse("minecraft:raiders")
	tags.Add(raiders, resource.MustParse("minecraft:pillager"))

	assert.True(t, tags.EntityHasTag(raiders, resource.MustParse("minecraft:pillager")))
	assert.False(t, tags.EntityHasTag(raiders, resource.MustParse("minecraft:zombie")))
	assert.False(t, tags.EntityHasTag(resource.MustParse("x:unknown"), resource.MustParse("minecraft:zombie")))
}
