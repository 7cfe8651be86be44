// Package files реализует локальное хранилище загруженных файлов:
// сканов бизнес-документов и подтверждений оплаты.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store сохраняет файлы на диске под случайными ключами.
// Ключ не содержит исходного имени файла, расширение сохраняется.
type Store struct {
	dir string
}

// New создает хранилище в каталоге dir, создавая его при необходимости.
func New(dir string) (*Store, error) {
	const op = "files.New"
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{dir: dir}, nil
}

// Save записывает содержимое r и возвращает ключ сохранённого файла.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	const op = "files.Save"

	ext := strings.ToLower(filepath.Ext(originalName))
	key := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(filepath.Join(s.dir, key))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}

// Remove удаляет файл по ключу. Отсутствие файла не считается ошибкой.
func (s *Store) Remove(key string) error {
	const op = "files.Remove"
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
