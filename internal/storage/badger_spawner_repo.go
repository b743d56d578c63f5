package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const badgerKeyPrefix = "spawner:"

// spawnerRecord - формат записи в BadgerDB (JSON, сжатый zstd)
type spawnerRecord struct {
	Spawned   int       `json:"spawned"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BadgerSpawnerRepo хранит счётчики спаунеров во встроенной BadgerDB
type BadgerSpawnerRepo struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewBadgerSpawnerRepo открывает базу в каталоге dataPath/spawners
func NewBadgerSpawnerRepo(dataPath string) (*BadgerSpawnerRepo, error) {
	opts := badger.DefaultOptions(filepath.Join(dataPath, "spawners"))
	return NewBadgerSpawnerRepoWithOptions(opts)
}

// NewBadgerSpawnerRepoWithOptions открывает базу с произвольными опциями
// (например badger.DefaultOptions("").WithInMemory(true) в тестах)
func NewBadgerSpawnerRepoWithOptions(opts badger.Options) (*BadgerSpawnerRepo, error) {
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd decoder: %w", err)
	}

	return &BadgerSpawnerRepo{db: db, encoder: encoder, decoder: decoder}, nil
}

func (r *BadgerSpawnerRepo) encode(spawned int) ([]byte, error) {
	data, err := json.Marshal(spawnerRecord{Spawned: spawned, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}
	return r.encoder.EncodeAll(data, nil), nil
}

func (r *BadgerSpawnerRepo) decode(raw []byte) (spawnerRecord, error) {
	var rec spawnerRecord
	data, err := r.decoder.DecodeAll(raw, nil)
	if err != nil {
		return rec, fmt.Errorf("ошибка распаковки: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("ошибка десериализации: %w", err)
	}
	return rec, nil
}

func (r *BadgerSpawnerRepo) Save(ctx context.Context, key string, spawned int) error {
	return r.BatchSave(ctx, map[string]int{key: spawned})
}

func (r *BadgerSpawnerRepo) Load(ctx context.Context, key string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if key == "" {
		return 0, false, ErrInvalidKey
	}

	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	rec, err := r.decode(raw)
	if err != nil {
		return 0, false, fmt.Errorf("повреждённая запись %s: %w", key, err)
	}
	return rec.Spawned, true, nil
}

func (r *BadgerSpawnerRepo) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}

// BatchSave пишет все счётчики через WriteBatch
func (r *BadgerSpawnerRepo) BatchSave(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateBatch(counts); err != nil {
		return err
	}

	wb := r.db.NewWriteBatch()
	defer wb.Cancel()

	for key, n := range counts {
		value, err := r.encode(n)
		if err != nil {
			return err
		}
		if err := wb.Set([]byte(badgerKeyPrefix+key), value); err != nil {
			return fmt.Errorf("ошибка записи %s: %w", key, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

func (r *BadgerSpawnerRepo) Close() error {
	r.encoder.Close()
	r.decoder.Close()
	return r.db.Close()
}
