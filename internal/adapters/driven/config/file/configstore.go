package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultFileName is the configuration file name inside the config directory.
const DefaultFileName = "config.toml"

// ConfigStore is a TOML file exposed as dotted keys: [remote] url = "..."
// reads as "remote.url". Set writes the file immediately, nesting dotted
// keys back into tables.
type ConfigStore struct {
	path string

	mu   sync.RWMutex
	data map[string]any
}

// NewConfigStore opens config.toml in configDir, ~/.dself when empty.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".dself")
	}
	return NewConfigStoreAt(filepath.Join(configDir, DefaultFileName))
}

// NewConfigStoreAt opens the TOML file at path. The parent directory is
// created if needed; a missing file starts empty.
func NewConfigStoreAt(path string) (*ConfigStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	s := &ConfigStore{path: path, data: make(map[string]any)}
	if err := s.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Get implements driven.ConfigStore.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetString implements driven.ConfigStore.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt implements driven.ConfigStore. TOML integers decode as int64.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetBool implements driven.ConfigStore.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetStringSlice implements driven.ConfigStore. Non-string array items
// are skipped.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Set stores value and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.write()
}

// Save writes the file.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write replaces the file atomically. Caller holds the lock.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(nest(s.data))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load re-reads the file, discarding unsaved values.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	s.data = make(map[string]any, len(doc))
	flatten("", doc, s.data)
	return nil
}

// Path implements driven.ConfigStore.
func (s *ConfigStore) Path() string {
	return s.path
}

// Keys implements driven.ConfigStore.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// flatten copies nested tables into dst under dotted keys.
func flatten(prefix string, table map[string]any, dst map[string]any) {
	for key, value := range table {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(key, nested, dst)
			continue
		}
		dst[key] = value
	}
}

// nest rebuilds tables from dotted keys. A key that collides with a value
// at one of its parent paths stays a quoted dotted key at the top level.
func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, ".")
		table, ok := root, true
		for _, part := range parts[:len(parts)-1] {
			child, exists := table[part]
			if !exists {
				next := make(map[string]any)
				table[part] = next
				table = next
				continue
			}
			next, isTable := child.(map[string]any)
			if !isTable {
				ok = false
				break
			}
			table = next
		}
		leaf := parts[len(parts)-1]
		if _, taken := table[leaf]; ok && !taken {
			table[leaf] = flat[key]
			continue
		}
		root[key] = flat[key]
	}
	return root
}
