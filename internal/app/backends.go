package app

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/auth"
	"github.com/annel0/blockverse-tweaks/internal/config"
	"github.com/annel0/blockverse-tweaks/internal/eventbus"
	"github.com/annel0/blockverse-tweaks/internal/storage"
)

// OpenRepo открывает хранилище счётчиков спаунеров, выбранное в конфигурации
func OpenRepo(ctx context.Context, c config.StorageConfig) (storage.SpawnerRepo, error) {
	switch c.Backend {
	case "", "memory":
		return storage.NewMemorySpawnerRepo(), nil
	case "badger":
		return storage.NewBadgerSpawnerRepo(c.Badger.Path)
	case "redis":
		return storage.NewRedisSpawnerRepo(ctx, &storage.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Key:      c.Redis.Key,
		})
	case "maria":
		return storage.NewMariaSpawnerRepo(ctx, c.Maria.DSN)
	default:
		return nil, fmt.Errorf("неизвестное хранилище %q", c.Backend)
	}
}

// OpenBus создаёт шину событий, выбранную в конфигурации
func OpenBus(c config.EventBusConfig) (eventbus.EventBus, error) {
	switch c.Backend {
	case "", "memory":
		return eventbus.NewMemoryBus(c.Buffer), nil
	case "jetstream":
		return eventbus.NewJetStreamBus(c.URL, c.Stream, time.Duration(c.Retention)*time.Hour)
	default:
		return nil, fmt.Errorf("неизвестная шина событий %q", c.Backend)
	}
}

// OpenAccounts открывает хранилище учётных записей админ-API
func OpenAccounts(ctx context.Context, c config.AuthConfig) (auth.AccountRepository, error) {
	switch c.Backend {
	case "", "memory":
		return auth.NewMemoryAccountRepo(), nil
	case "maria":
		return auth.NewMariaAccountRepo(ctx, c.Maria.DSN)
	case "mongo":
		return auth.NewMongoAccountRepo(ctx, auth.MongoConfig{
			URI:      c.Mongo.URI,
			Database: c.Mongo.Database,
		})
	default:
		return nil, fmt.Errorf("неизвестное хранилище учётных записей %q", c.Backend)
	}
}
