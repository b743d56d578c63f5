package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryAccountRepo - потокобезопасное хранилище в памяти для тестов и одиночного сервера.
// ID выдаются по возрастанию начиная с 1.
type MemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	nextID   uint64
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		accounts: make(map[string]*Account),
		nextID:   1,
	}
}

func (r *MemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[normalize(username)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (r *MemoryAccountRepo) Create(ctx context.Context, username, passwordHash string, isAdmin bool) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := normalize(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[key]; exists {
		return nil, ErrAccountExists
	}
	now := time.Now()
	acc := &Account{
		ID:           r.nextID,
		Username:     key,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		LastLogin:    now,
	}
	r.nextID++
	r.accounts[key] = acc
	cp := *acc
	return &cp, nil
}

func (r *MemoryAccountRepo) TouchLogin(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.ID == id {
			acc.LastLogin = time.Now()
			return nil
		}
	}
	return ErrAccountNotFound
}

func (r *MemoryAccountRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts), nil
}

func (r *MemoryAccountRepo) Close() error { return nil }
