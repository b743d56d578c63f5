package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr     string // Адрес Redis сервера
	Password string // Пароль (пустой если не требуется)
	DB       int    // Номер базы данных
	Key      string // Имя хеша со счётчиками
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr: "localhost:6379",
		Key:  "tweaks:spawners",
	}
}

// RedisSpawnerRepo хранит счётчики в одном хеше Redis: поле - ключ спаунера
type RedisSpawnerRepo struct {
	client *redis.Client
	key    string
}

// NewRedisSpawnerRepo подключается к Redis и проверяет соединение
func NewRedisSpawnerRepo(ctx context.Context, config *RedisConfig) (*RedisSpawnerRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := config.Key
	if key == "" {
		key = DefaultRedisConfig().Key
	}
	return &RedisSpawnerRepo{client: client, key: key}, nil
}

func (r *RedisSpawnerRepo) Save(ctx context.Context, key string, spawned int) error {
	if err := validate(key, spawned); err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.key, key, spawned).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения %s в Redis: %w", key, err)
	}
	return nil
}

func (r *RedisSpawnerRepo) Load(ctx context.Context, key string) (int, bool, error) {
	if key == "" {
		return 0, false, ErrInvalidKey
	}
	n, err := r.client.HGet(ctx, r.key, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки %s из Redis: %w", key, err)
	}
	return n, true, nil
}

func (r *RedisSpawnerRepo) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := r.client.HDel(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("ошибка удаления %s из Redis: %w", key, err)
	}
	return nil
}

// BatchSave записывает все счётчики одной командой HSET
func (r *RedisSpawnerRepo) BatchSave(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	if err := validateBatch(counts); err != nil {
		return err
	}

	values := make(map[string]interface{}, len(counts))
	for key, n := range counts {
		values[key] = n
	}
	if err := r.client.HSet(ctx, r.key, values).Err(); err != nil {
		return fmt.Errorf("ошибка пакетного сохранения в Redis: %w", err)
	}
	return nil
}

func (r *RedisSpawnerRepo) Close() error {
	return r.client.Close()
}
