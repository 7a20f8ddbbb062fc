package control

import (
	"os"
	"sync"

	"github.com/go-errors/errors"
	"gopkg.in/yaml.v3"
)

const (
	LastDatDir       = "lastDatDir"
	LastContainerDir = "lastContainerDir"
)

// Settings is the string keyed store of the host application.
type Settings interface {
	Get(key string) string
	Set(key, value string) error
}

// FileSettings keeps the settings in a small yaml document.
type FileSettings struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

func OpenSettings(path string) (*FileSettings, error) {
	s := &FileSettings{path: path, values: make(map[string]string)}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	if err := yaml.Unmarshal(b, &s.values); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

func (s *FileSettings) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *FileSettings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	b, err := yaml.Marshal(s.values)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	return os.WriteFile(s.path, b, 0644)
}

// MemorySettings is a Settings for headless use.
type MemorySettings map[string]string

func (m MemorySettings) Get(key string) string {
	return m[key]
}

func (m MemorySettings) Set(key, value string) error {
	m[key] = value
	return nil
}
