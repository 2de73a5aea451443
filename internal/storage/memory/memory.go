// memory — потокобезопасная реализация storage.Storage в памяти.
// Используется в тестах сервисного и транспортного слоёв.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/storage"
)

// Storage хранит пользователей в map под мьютексом.
type Storage struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.User
}

var _ storage.Storage = (*Storage)(nil)

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{byID: make(map[int64]models.User)}
}

func (s *Storage) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, 0) {
		return storage.ErrAlreadyExists
	}

	s.nextID++
	user.ID = s.nextID
	s.byID[user.ID] = *user

	return nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *Storage) UserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &u, nil
}

func (s *Storage) UpdateProfile(_ context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if upd.Email != nil {
		if s.emailTaken(*upd.Email, id) {
			return nil, storage.ErrAlreadyExists
		}
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	u.UpdatedAt = upd.UpdatedAt

	s.byID[id] = u

	return &u, nil
}

// SetStatus меняет флаги прав в обход профиля (административное действие в тестах).
func (s *Storage) SetStatus(id int64, active, superuser bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byID[id]; ok {
		u.IsActive = active
		u.IsSuperuser = superuser
		s.byID[id] = u
	}
}

// Delete удаляет пользователя (для сценариев с удалённой учётной записью).
func (s *Storage) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)
}

func (s *Storage) Close() {}

// emailTaken сообщает, занят ли email кем-то кроме except.
func (s *Storage) emailTaken(email string, except int64) bool {
	for id, u := range s.byID {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}

	return false
}
