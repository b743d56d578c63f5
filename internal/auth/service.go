package auth

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/logging"
)

// ErrBadCredentials - неверное имя или пароль
var ErrBadCredentials = errors.New("неверное имя пользователя или пароль")

// Service проверяет учётные данные и выпускает токены
type Service struct {
	repo   AccountRepository
	issuer *TokenIssuer
	log    *logging.Logger
}

func NewService(repo AccountRepository, issuer *TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer, log: logging.GetAPILogger()}
}

func (s *Service) Issuer() *TokenIssuer { return s.issuer }

// Login проверяет пароль и выпускает токен. Неизвестное имя и неверный
// пароль неразличимы для вызывающего.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, *Account, error) {
	acc, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrAccountNotFound) {
		return "", time.Time{}, nil, ErrBadCredentials
	}
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if !CheckPassword(acc.PasswordHash, password) {
		return "", time.Time{}, nil, ErrBadCredentials
	}
	token, expires, err := s.issuer.Issue(acc)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if err := s.repo.TouchLogin(ctx, acc.ID); err != nil {
		s.log.Warn("Не удалось обновить время входа %s: %v", acc.Username, err)
	}
	return token, expires, acc, nil
}

// Register создаёт учётную запись с хешированным паролем
func (s *Service) Register(ctx context.Context, username, password string, isAdmin bool) (*Account, error) {
	if normalize(username) == "" {
		return nil, errors.New("пустое имя пользователя")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, username, hash, isAdmin)
}

// Bootstrap создаёт администратора, если хранилище пусто.
// Возвращает true, если учётная запись была создана.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if password == "" {
		s.log.Warn("Хранилище учётных записей пусто, а пароль администратора не задан: вход в админ-API невозможен")
		return false, nil
	}
	if _, err := s.Register(ctx, username, password, true); err != nil {
		return false, err
	}
	s.log.Info("Создан администратор %s", normalize(username))
	return true, nil
}

func (s *Service) Close() error {
	return s.repo.Close()
}
