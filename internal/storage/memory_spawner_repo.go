package storage

import (
	"context"
	"sync"
)

// MemorySpawnerRepo - in-memory реализация SpawnerRepo для тестов и разработки
type MemorySpawnerRepo struct {
	mu   sync.RWMutex
	data map[string]int
}

// NewMemorySpawnerRepo создаёт пустой репозиторий в памяти
func NewMemorySpawnerRepo() *MemorySpawnerRepo {
	return &MemorySpawnerRepo{data: make(map[string]int)}
}

func (r *MemorySpawnerRepo) Save(ctx context.Context, key string, spawned int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(key, spawned); err != nil {
		return err
	}

	r.mu.Lock()
	r.data[key] = spawned
	r.mu.Unlock()
	return nil
}

func (r *MemorySpawnerRepo) Load(ctx context.Context, key string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if key == "" {
		return 0, false, ErrInvalidKey
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.data[key]
	return n, ok, nil
}

// Delete удаляет запись; отсутствие записи не считается ошибкой
func (r *MemorySpawnerRepo) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}

	r.mu.Lock()
	delete(r.data, key)
	r.mu.Unlock()
	return nil
}

func (r *MemorySpawnerRepo) BatchSave(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateBatch(counts); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, n := range counts {
		r.data[key] = n
	}
	return nil
}

func (r *MemorySpawnerRepo) Close() error { return nil }

// Count возвращает количество сохранённых записей (для отладки)
func (r *MemorySpawnerRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
