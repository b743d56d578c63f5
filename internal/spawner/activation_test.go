package spawner

import (
	"testing"

	"github.com/annel0/blockverse-tweaks/internal/world/block"
	"github.com/stretchr/testify/assert"
)

func TestActivationRoundTrip(t *testing.T) {
	logic := newFakeLogic()
	assert.Equal(t, Active, ReadActivation(logic))

	WriteActivation(logic, Disabled)
	assert.Equal(t, Disabled, ReadActivation(logic))
	assert.Equal(t, int16(0), logic.tag.Short(KeyMaxNearbyEntities))
	assert.Equal(t, int16(0), logic.tag.Short(KeyRequiredPlayerRange))
	assert.Equal(t, int16(20), logic.tag.Short("Delay"), "остальные поля логики сохраняются")

	WriteActivation(logic, Active)
	assert.Equal(t, Active, ReadActivation(logic))
	assert.Equal(t, ActiveMaxNearbyEntities, logic.tag.Short(KeyMaxNearbyEntities))
	assert.Equal(t, ActiveRequiredPlayerRange, logic.tag.Short(KeyRequiredPlayerRange))
}

func TestActivationOnlyBothZeroIsDisabled(t *testing.T) {
	logic := &fakeLogic{tag: block.Metadata{KeyMaxNearbyEntities: int16(0), KeyRequiredPlayerRange: int16(16)}}
	assert.Equal(t, Active, ReadActivation(logic))

	// значения после JSON приходят как float64
	logic = &fakeLogic{tag: block.Metadata{KeyMaxNearbyEntities: float64(0), KeyRequiredPlayerRange: float64(0)}}
	assert.Equal(t, Disabled, ReadActivation(logic))
	assert.Equal(t, "disabled", Disabled.String())
}
