package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	_ "github.com/go-sql-driver/mysql"
)

const createSpawnerTable = `
	CREATE TABLE IF NOT EXISTS spawner_states (
		spawner_key VARCHAR(255) NOT NULL PRIMARY KEY,
		spawned_mobs INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const upsertSpawner = `
	INSERT INTO spawner_states (spawner_key, spawned_mobs)
	VALUES (?, ?)
	ON DUPLICATE KEY UPDATE
		spawned_mobs = VALUES(spawned_mobs),
		updated_at = CURRENT_TIMESTAMP
`

// MariaSpawnerRepo реализует SpawnerRepo поверх MariaDB/MySQL
type MariaSpawnerRepo struct {
	db *sql.DB
}

// NewMariaSpawnerRepo открывает соединение по DSN и создаёт таблицу при необходимости
func NewMariaSpawnerRepo(ctx context.Context, dsn string) (*MariaSpawnerRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к MariaDB: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки соединения с MariaDB: %w", err)
	}

	repo, err := NewMariaSpawnerRepoFromDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewMariaSpawnerRepoFromDB оборачивает готовое соединение (используется в тестах)
func NewMariaSpawnerRepoFromDB(ctx context.Context, db *sql.DB) (*MariaSpawnerRepo, error) {
	if _, err := db.ExecContext(ctx, createSpawnerTable); err != nil {
		return nil, fmt.Errorf("ошибка создания таблицы spawner_states: %w", err)
	}
	return &MariaSpawnerRepo{db: db}, nil
}

func (r *MariaSpawnerRepo) Save(ctx context.Context, key string, spawned int) error {
	if err := validate(key, spawned); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertSpawner, key, spawned); err != nil {
		return fmt.Errorf("ошибка сохранения спаунера %s: %w", key, err)
	}
	return nil
}

func (r *MariaSpawnerRepo) Load(ctx context.Context, key string) (int, bool, error) {
	if key == "" {
		return 0, false, ErrInvalidKey
	}

	var spawned int
	err := r.db.QueryRowContext(ctx,
		`SELECT spawned_mobs FROM spawner_states WHERE spawner_key = ?`, key).Scan(&spawned)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки спаунера %s: %w", key, err)
	}
	return spawned, true, nil
}

// Delete удаляет запись; отсутствие строки не считается ошибкой
func (r *MariaSpawnerRepo) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM spawner_states WHERE spawner_key = ?`, key); err != nil {
		return fmt.Errorf("ошибка удаления спаунера %s: %w", key, err)
	}
	return nil
}

// BatchSave сохраняет счётчики в одной транзакции, ключи пишутся в отсортированном порядке
func (r *MariaSpawnerRepo) BatchSave(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	if err := validateBatch(counts); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSpawner)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := stmt.ExecContext(ctx, key, counts[key]); err != nil {
			return fmt.Errorf("ошибка сохранения спаунера %s в batch: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func (r *MariaSpawnerRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
