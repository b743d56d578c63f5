package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Distance(t *testing.T) {
	a := Vec3{X: 0, Y: 64, Z: 0}
	b := Vec3{X: 3, Y: 68, Z: 0}

	assert.Equal(t, 25, a.DistanceSq(b))
	assert.Equal(t, 5.0, a.DistanceTo(b))
	assert.Equal(t, 5.0, b.DistanceTo(a))
	assert.Zero(t, a.DistanceTo(a))
}

func TestVec3Helpers(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	assert.True(t, v.Equals(Vec3{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 6}, v.Add(v))
	assert.Equal(t, Vec3Float{X: 1, Y: 2, Z: 3}, v.ToFloat())
	assert.Equal(t, Vec2{X: 1, Y: 3}, v.ToVec2())
	assert.Equal(t, 5.0, Vec3Float{}.DistanceTo(Vec3Float{X: 3, Z: 4}))
}

func TestVec2Chunks(t *testing.T) {
	assert.Equal(t, Vec2{X: 0, Y: -1}, Vec2{X: 15, Y: -1}.ToChunkCoords())
	assert.Equal(t, Vec2{X: 2, Y: 1}, Vec2{X: 34, Y: 17}.ToChunkCoords())
	assert.Equal(t, Vec2{X: 15, Y: 15}, Vec2{X: -1, Y: 31}.LocalInChunk())
}
