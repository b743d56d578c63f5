package matcher

import (
	"bytes"
	"testing"

	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/registry"
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	zombie    = resource.MustParse("minecraft:zombie")
	blaze     = resource.MustParse("minecraft:blaze")
	pillager  = resource.MustParse("minecraft:pillager")
	overworld = resource.MustParse("minecraft:overworld")
	nether    = resource.MustParse("minecraft:the_nether")
)

func TestParseLine(t *testing.T) {
	m, err := ParseLine("minecraft:zombie")
	require.NoError(t, err)
	assert.Equal(t, KindID, m.Kind)
	assert.Equal(t, zombie, m.Location)
	assert.Nil(t, m.Dimension)

	m, err = ParseLine("#minecraft:raiders,minecraft:overworld")
	require.NoError(t, err)
	assert.Equal(t, KindTag, m.Kind)
	require.NotNil(t, m.Dimension)
	assert.Equal(t, overworld, *m.Dimension)
	assert.Equal(t, "#minecraft:raiders,minecraft:overworld", m.String())

	for _, bad := range []string{"", "a,b,c", "Bad:Zombie", "minecraft:zombie,Nether!"} {
		_, err := ParseLine(bad)
		assert.ErrorIs(t, err, ErrInvalidLine, "строка %q", bad)
	}
}

func TestParseListDropsInvalidWithWarning(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.SetDefault(logging.NewConsoleLogger("", &buf, logging.WARN))
	defer logging.SetDefault(prev)

	list := ParseList([]string{"minecraft:zombie", "not valid!", "minecraft:blaze,minecraft:the_nether"})

	require.Len(t, list, 2)
	assert.Equal(t, zombie, list[0].Location)
	assert.Equal(t, blaze, list[1].Location)
	assert.Contains(t, buf.String(), "[WARN]")
	assert.Contains(t, buf.String(), "not valid!")
}

func TestMatchesEntity(t *testing.T) {
	tags := registry.NewEntityTags()
	tags.Add(resource.MustParse("minecraft:raiders"), pillager)

	byID, _ := ParseLine("minecraft:blaze,minecraft:the_nether")
	assert.True(t, byID.MatchesEntity(blaze, nether, tags))
	assert.False(t, byID.MatchesEntity(blaze, overworld, tags), "другое измерение")
	assert.False(t, byID.MatchesEntity(zombie, nether, tags))

	byTag, _ := ParseLine("#minecraft:raiders")
	assert.True(t, byTag.MatchesEntity(pillager, overworld, tags))
	assert.False(t, byTag.MatchesEntity(zombie, overworld, tags))
	assert.False(t, byTag.MatchesEntity(pillager, overworld, nil), "без реестра тегов совпадений нет")
}

func TestClassifyEmptyListAlwaysAllowed(t *testing.T) {
	for _, whitelist := range []bool{false, true} {
		for _, et := range []resource.Location{zombie, blaze} {
			for _, dim := range []resource.Location{overworld, nether} {
				assert.Equal(t, Allowed, Classify(et, dim, nil, whitelist, nil))
			}
		}
	}
}

func TestClassifyBlacklist(t *testing.T) {
	list := ParseList([]string{"minecraft:zombie"})
	assert.Equal(t, Blocked, Classify(zombie, overworld, list, false, nil))
	assert.Equal(t, Allowed, Classify(blaze, overworld, list, false, nil))
}

func TestClassifyWhitelist(t *testing.T) {
	list := ParseList([]string{"minecraft:zombie"})
	assert.Equal(t, Allowed, Classify(zombie, overworld, list, true, nil))
	assert.Equal(t, Blocked, Classify(blaze, overworld, list, true, nil))
}

func TestClassifyDimensionScoped(t *testing.T) {
	list := ParseList([]string{"minecraft:blaze,minecraft:the_nether"})
	assert.Equal(t, Blocked, Classify(blaze, nether, list, false, nil))
	assert.Equal(t, Allowed, Classify(blaze, overworld, list, false, nil))
	assert.Equal(t, "blocked", Blocked.String())
}
