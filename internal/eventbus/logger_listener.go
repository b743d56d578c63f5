package eventbus

import (
	"context"

	"github.com/annel0/blockverse-tweaks/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus, logger *logging.Logger) (Subscription, error) {
	if logger == nil {
		logger = logging.Default()
	}
	sub, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		switch ev.EventType {
		case TypeSpawnerDisabled, TypeSpawnerReenabled, TypeSpawnerReset:
			var p SpawnerPayload
			if err := ev.Decode(&p); err == nil {
				logger.Debug("[EventBus] %s %s spawned=%d cap=%d", ev.EventType, p.Key, p.SpawnedMobs, p.Cap)
				return
			}
		}
		logger.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	logger.Info("LoggingListener: подписка на все события активирована")
	return sub, nil
}
