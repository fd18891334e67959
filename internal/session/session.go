// Package session хранит единственный bearer токен клиента.
//
// Токен либо есть, либо его нет: срока жизни и обновления не предусмотрено.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"taskManager/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// StorageKey - ключ, под которым хранится токен
const StorageKey = "token"

type Holder interface {
	Token() (string, bool)
	SetToken(value string) error
	Clear() error
}

// MemoryStore держит токен только в памяти процесса
type MemoryStore struct {
	mtx   sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) SetToken(value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.token = value
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.SetToken("")
}

// FileStore хранит токен в YAML файле под ключом "token".
// Файл перечитывается при каждом обращении, чтобы CLI и веб-интерфейс видели одну сессию.
type FileStore struct {
	mtx  sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Token() (string, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	values, err := s.read()
	if err != nil {
		logger.Warn("Session: не удалось прочитать файл сессии",
			zap.String("path", s.path),
			zap.Error(err))
		return "", false
	}

	token := values[StorageKey]
	return token, token != ""
}

func (s *FileStore) SetToken(value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	values, err := s.read()
	if err != nil {
		values = map[string]string{}
	}
	values[StorageKey] = value

	return s.write(values)
}

func (s *FileStore) Clear() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("удаление файла сессии: %w", err)
	}
	return nil
}

func (s *FileStore) read() (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("разбор файла сессии: %w", err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("сериализация сессии: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("создание каталога сессии: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись сессии: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("права на файл сессии: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("запись сессии: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("сохранение сессии: %w", err)
	}
	return nil
}
