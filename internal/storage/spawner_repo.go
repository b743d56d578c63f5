package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidKey возвращается при пустом ключе спаунера
var ErrInvalidKey = errors.New("недействительный ключ спаунера")

// SpawnerRepo определяет интерфейс постоянного хранилища счётчиков спаунеров.
// Ключ - строковое представление идентичности спаунера ("измерение/x/y/z").
type SpawnerRepo interface {
	// Save сохраняет счётчик одного спаунера
	Save(ctx context.Context, key string, spawned int) error

	// Load загружает счётчик. found=false, если запись отсутствует.
	Load(ctx context.Context, key string) (spawned int, found bool, err error)

	// Delete удаляет запись спаунера (блок разрушен)
	Delete(ctx context.Context, key string) error

	// BatchSave сохраняет счётчики нескольких спаунеров за одну операцию
	BatchSave(ctx context.Context, counts map[string]int) error

	// Close освобождает ресурсы хранилища
	Close() error
}

func validate(key string, spawned int) error {
	if key == "" {
		return ErrInvalidKey
	}
	if spawned < 0 {
		return fmt.Errorf("отрицательный счётчик для %s: %d", key, spawned)
	}
	return nil
}

func validateBatch(counts map[string]int) error {
	for key, n := range counts {
		if err := validate(key, n); err != nil {
			return err
		}
	}
	return nil
}
