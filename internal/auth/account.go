// Package auth хранит учётные записи админ-API и выпускает JWT.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Account - учётная запись оператора админ-API
type Account struct {
	ID           uint64
	Username     string // в нижнем регистре
	PasswordHash string // bcrypt
	IsAdmin      bool
	CreatedAt    time.Time
	LastLogin    time.Time
}

// AccountRepository хранит учётные записи. Имена нечувствительны к регистру.
type AccountRepository interface {
	// GetByUsername возвращает ErrAccountNotFound, если записи нет
	GetByUsername(ctx context.Context, username string) (*Account, error)
	// Create возвращает ErrAccountExists при занятом имени
	Create(ctx context.Context, username, passwordHash string, isAdmin bool) (*Account, error)
	TouchLogin(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	ErrAccountNotFound = errors.New("учётная запись не найдена")
	ErrAccountExists   = errors.New("учётная запись уже существует")
)

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
