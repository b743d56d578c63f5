package stacksize

import "sync/atomic"

// Latch - одноразовая защёлка: TryRun возвращает true ровно один раз
// до следующего Reset (перезапуск процесса).
type Latch struct {
	done atomic.Bool
}

// TryRun захватывает защёлку; false, если она уже сработала
func (l *Latch) TryRun() bool {
	return l.done.CompareAndSwap(false, true)
}

// Done сообщает, сработала ли защёлка
func (l *Latch) Done() bool {
	return l.done.Load()
}

// Reset возвращает защёлку в исходное состояние
func (l *Latch) Reset() {
	l.done.Store(false)
}
