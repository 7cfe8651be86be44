// Package client реализует Go-клиент REST API маркетплейса: хранение
// учётных данных сессии, подстановку bearer-токена, обработку истечения
// сессии и подписочный гейт на стороне клиента.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SessionTTL — срок жизни сохранённых учётных данных.
// Совпадает со сроком жизни JWT и cookie на сервере.
const SessionTTL = 360 * time.Hour

// UserRecord — данные пользователя, возвращаемые входом и регистрацией.
type UserRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	AuthProvider string `json:"authProvider"`
}

// Session — пользователь и токен текущей сессии.
type Session struct {
	User    UserRecord `json:"user"`
	Token   string     `json:"token"`
	SavedAt time.Time  `json:"saved_at"`
}

// CredentialStore хранит сессию в памяти и зеркалирует её в JSON-файл,
// чтобы сессия переживала перезапуск процесса. Истёкшая запись
// отбрасывается при загрузке без обращения к сети.
type CredentialStore struct {
	mu      sync.Mutex
	path    string
	session *Session
}

// NewCredentialStore создает хранилище и гидрирует сессию из файла.
// Отсутствующий или истёкший файл оставляет сессию пустой.
func NewCredentialStore(path string) (*CredentialStore, error) {
	const op = "client.NewCredentialStore"

	s := &CredentialStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Повреждённый файл равносилен отсутствию сессии.
		return s, nil
	}
	if session.Token == "" || time.Since(session.SavedAt) > SessionTTL {
		return s, nil
	}

	s.session = &session
	return s, nil
}

// Current возвращает активную сессию, если она есть и не истекла.
func (s *CredentialStore) Current() (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, false
	}
	if time.Since(s.session.SavedAt) > SessionTTL {
		s.session = nil
		return nil, false
	}
	session := *s.session
	return &session, true
}

// Save записывает пользователя и токен в память и в файл.
func (s *CredentialStore) Save(user UserRecord, token string) error {
	const op = "client.CredentialStore.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{
		User:    user,
		Token:   token,
		SavedAt: time.Now(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.session = session
	return nil
}

// Clear удаляет сессию из памяти и с диска.
func (s *CredentialStore) Clear() error {
	const op = "client.CredentialStore.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
