package feature

import (
	"testing"

	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeature struct {
	Base
	loads int
}

func (f *fakeFeature) LoadConfig(cfg *config.Config) {
	f.loads++
	f.SetEnabled(cfg.Features.CustomStackSize.Enabled)
}

func TestModuleFansOutConfig(t *testing.T) {
	a := &fakeFeature{Base: NewBase("A", "first")}
	b := &fakeFeature{Base: NewBase("B", "second")}
	m := NewModule("misc", a, b)

	cfg := config.Default()
	cfg.Features.CustomStackSize.Enabled = true
	m.LoadConfig(cfg)

	assert.Equal(t, 1, a.loads)
	assert.Equal(t, 1, b.loads)
	assert.True(t, a.IsEnabled())
	assert.Len(t, m.Features(), 2)

	cfg.Features.CustomStackSize.Enabled = false
	m.LoadConfig(cfg)
	assert.False(t, b.IsEnabled())
}

func TestStatuses(t *testing.T) {
	a := &fakeFeature{Base: NewBase("A", "first")}
	a.SetEnabled(true)
	b := &fakeFeature{Base: NewBase("B", "second")}

	st := Statuses(NewModule("misc", a), NewModule("stacksize", b))
	require.Len(t, st, 2)
	assert.Equal(t, Status{Module: "misc", Name: "A", Description: "first", Enabled: true}, st[0])
	assert.Equal(t, "stacksize", st[1].Module)
	assert.False(t, st[1].Enabled)
}
