package spawner

import (
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// SpawnReason - причина появления моба
type SpawnReason uint8

const (
	ReasonNatural SpawnReason = iota
	ReasonSpawner
	ReasonCommand
	ReasonBreeding
	ReasonEvent
)

// SpawnEvent - хост собирается материализовать моба
type SpawnEvent struct {
	World      World
	Reason     SpawnReason
	Spawner    Spawner           // nil для спавна не из спаунера
	EntityType resource.Location // пустой, если тип не удалось определить
}

// Hand - рука игрока
type Hand uint8

const (
	MainHand Hand = iota
	OffHand
)

// Player - актор взаимодействия
type Player interface {
	Swing(hand Hand)
}

// ItemStack - стак предметов в руке игрока
type ItemStack struct {
	Item  resource.Location
	Count int
}

// IsEmpty сообщает, что стак пуст
func (s *ItemStack) IsEmpty() bool {
	return s == nil || s.Count <= 0 || s.Item.IsZero()
}

// Shrink уменьшает стак на n предметов
func (s *ItemStack) Shrink(n int) {
	s.Count -= n
	if s.Count < 0 {
		s.Count = 0
	}
}

// Result - решение обработчика относительно действия хоста по умолчанию
type Result uint8

const (
	ResultDefault Result = iota
	ResultAllow
	ResultDeny
)

// InteractEvent - игрок кликнул правой кнопкой по блоку
type InteractEvent struct {
	World    World
	Pos      vec.Vec3
	Player   Player
	Hand     Hand
	Stack    *ItemStack
	UseItem  Result
	Canceled bool
}

// BreakEvent - блок разрушен, ExpToDrop можно изменить
type BreakEvent struct {
	World     World
	Pos       vec.Vec3
	Block     block.BlockID
	ExpToDrop int
}

// TransitionKind - тип перехода состояния спаунера
type TransitionKind uint8

const (
	TransitionDisabled TransitionKind = iota
	TransitionReenabled
	TransitionReset
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionDisabled:
		return "SpawnerDisabled"
	case TransitionReenabled:
		return "SpawnerReenabled"
	case TransitionReset:
		return "SpawnerReset"
	default:
		return "Unknown"
	}
}

// Transition описывает совершённый переход
type Transition struct {
	Kind        TransitionKind
	Key         Key
	SpawnedMobs int
	Cap         int
}

// Notifier получает уведомления о переходах (шина событий, аудит)
type Notifier interface {
	Notify(t Transition)
}

// NotifierFunc адаптирует функцию к Notifier
type NotifierFunc func(t Transition)

// Notify вызывает функцию
func (f NotifierFunc) Notify(t Transition) { f(t) }
