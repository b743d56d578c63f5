// Package feature группирует игровые функции в модули и раздаёт им конфигурацию.
package feature

import (
	"sync/atomic"

	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/logging"
)

// Feature - отдельная настраиваемая функция
type Feature interface {
	Name() string
	Description() string
	IsEnabled() bool
	// LoadConfig применяет свою секцию конфигурации
	LoadConfig(cfg *config.Config)
}

// Base хранит общие поля функции; встраивается в конкретные реализации
type Base struct {
	name        string
	description string
	enabled     int32 // atomic
}

// NewBase создаёт основу функции
func NewBase(name, description string) Base {
	return Base{name: name, description: description}
}

func (b *Base) Name() string        { return b.name }
func (b *Base) Description() string { return b.description }
func (b *Base) IsEnabled() bool     { return atomic.LoadInt32(&b.enabled) == 1 }

// SetEnabled включает или выключает функцию
func (b *Base) SetEnabled(v bool) {
	var n int32
	if v {
		n = 1
	}
	atomic.StoreInt32(&b.enabled, n)
}

// Module - именованная группа функций
type Module struct {
	name     string
	features []Feature
}

// NewModule создаёт модуль с набором функций
func NewModule(name string, features ...Feature) *Module {
	return &Module{name: name, features: features}
}

func (m *Module) Name() string { return m.name }

// Features возвращает функции модуля
func (m *Module) Features() []Feature {
	out := make([]Feature, len(m.features))
	copy(out, m.features)
	return out
}

// LoadConfig передаёт конфигурацию каждой функции модуля
func (m *Module) LoadConfig(cfg *config.Config) {
	for _, f := range m.features {
		f.LoadConfig(cfg)
		logging.Debug("[%s] %s: enabled=%v", m.name, f.Name(), f.IsEnabled())
	}
}

// Status - состояние функции для админ-API
type Status struct {
	Module      string `json:"module"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// Statuses собирает состояние всех функций модулей
func Statuses(modules ...*Module) []Status {
	var out []Status
	for _, m := range modules {
		for _, f := range m.features {
			out = append(out, Status{
				Module:      m.name,
				Name:        f.Name(),
				Description: f.Description(),
				Enabled:     f.IsEnabled(),
			})
		}
	}
	return out
}
