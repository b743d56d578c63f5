package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry - код ошибки MySQL/MariaDB при нарушении UNIQUE
const mysqlDuplicateEntry = 1062

const createAccountsTable = `CREATE TABLE IF NOT EXISTS api_accounts (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(50) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	last_login TIMESTAMP NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MariaAccountRepo реализует AccountRepository для MariaDB
type MariaAccountRepo struct {
	db *sql.DB
}

// NewMariaAccountRepo открывает подключение по DSN и создаёт таблицу
func NewMariaAccountRepo(ctx context.Context, dsn string) (*MariaAccountRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть подключение к MariaDB: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}
	repo, err := NewMariaAccountRepoFromDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewMariaAccountRepoFromDB использует готовое подключение
func NewMariaAccountRepoFromDB(ctx context.Context, db *sql.DB) (*MariaAccountRepo, error) {
	if _, err := db.ExecContext(ctx, createAccountsTable); err != nil {
		return nil, fmt.Errorf("не удалось создать таблицу api_accounts: %w", err)
	}
	return &MariaAccountRepo{db: db}, nil
}

func (m *MariaAccountRepo) GetByUsername(ctx context.Context, username string) (*Account, error) {
	const query = `SELECT id, username, password_hash, is_admin, created_at, last_login
		FROM api_accounts WHERE username = ?`

	var acc Account
	err := m.db.QueryRowContext(ctx, query, normalize(username)).Scan(
		&acc.ID,
		&acc.Username,
		&acc.PasswordHash,
		&acc.IsAdmin,
		&acc.CreatedAt,
		&acc.LastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении учётной записи: %w", err)
	}
	return &acc, nil
}

func (m *MariaAccountRepo) Create(ctx context.Context, username, passwordHash string, isAdmin bool) (*Account, error) {
	const query = `INSERT INTO api_accounts (username, password_hash, is_admin, created_at, last_login)
		VALUES (?, ?, ?, ?, ?)`

	name := normalize(username)
	now := time.Now()
	result, err := m.db.ExecContext(ctx, query, name, passwordHash, isAdmin, now, now)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("ошибка при создании учётной записи: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении ID учётной записи: %w", err)
	}
	return &Account{
		ID:           uint64(id),
		Username:     name,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		LastLogin:    now,
	}, nil
}

func (m *MariaAccountRepo) TouchLogin(ctx context.Context, id uint64) error {
	res, err := m.db.ExecContext(ctx, `UPDATE api_accounts SET last_login = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении времени входа: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (m *MariaAccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка при подсчёте учётных записей: %w", err)
	}
	return n, nil
}

func (m *MariaAccountRepo) Close() error {
	return m.db.Close()
}
