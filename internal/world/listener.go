package world

import "github.com/annel0/blockverse-tweaks/internal/spawner"

// Listener получает события мира. Все методы вызываются из потока тиков.
type Listener interface {
	// SpawnerLoaded - блок-сущность спаунера создана или загружена вместе с чанком
	SpawnerLoaded(w *World, sp *SpawnerEntity)
	// SpawnerUnloaded - чанк со спаунером выгружен
	SpawnerUnloaded(w *World, sp *SpawnerEntity)
	// SpawnerRemoved - блок спаунера уничтожен
	SpawnerRemoved(w *World, sp *SpawnerEntity)
	// SpawnerTick - тик блок-сущности спаунера
	SpawnerTick(w *World, sp *SpawnerEntity)
	// MobSpawning - моб вот-вот появится в мире
	MobSpawning(ev spawner.SpawnEvent)
	// RightClickBlock - игрок кликнул по блоку правой кнопкой
	RightClickBlock(ev *spawner.InteractEvent)
	// BlockBreak - блок разрушен игроком
	BlockBreak(ev *spawner.BreakEvent)
	// PlayerLoggedIn - игрок вошёл на сервер
	PlayerLoggedIn(w *World, p *Player)
	// WorldSave - мир сохраняется
	WorldSave(w *World)
}

// NopListener - Listener без реакции; встраивается, чтобы переопределить часть методов
type NopListener struct{}

func (NopListener) SpawnerLoaded(*World, *SpawnerEntity)   {}
func (NopListener) SpawnerUnloaded(*World, *SpawnerEntity) {}
func (NopListener) SpawnerRemoved(*World, *SpawnerEntity)  {}
func (NopListener) SpawnerTick(*World, *SpawnerEntity)     {}
func (NopListener) MobSpawning(spawner.SpawnEvent)         {}
func (NopListener) RightClickBlock(*spawner.InteractEvent) {}
func (NopListener) BlockBreak(*spawner.BreakEvent)         {}
func (NopListener) PlayerLoggedIn(*World, *Player)         {}
func (NopListener) WorldSave(*World)                       {}
