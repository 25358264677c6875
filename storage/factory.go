package storage

import (
	"fmt"
	"sync"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
)

// StorageFactory creates a Storage implementation from config.
type StorageFactory func(cfg Config, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]StorageFactory)
)

// RegisterFactory registers a storage backend factory for the given provider name.
// Implementation packages call this from an init function.
func RegisterFactory(name string, f StorageFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New creates a Storage implementation based on the given Config.
// Ensure the provider package has been imported so its factory is registered.
func New(cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, errors.InvalidInput("output.provider", fmt.Sprintf("storage provider %q is not registered", cfg.Provider))
	}

	l := logger.OrGet(log, "storage")
	l.Debug("initializing storage", logger.Fields("provider", cfg.Provider))
	return f(cfg, l)
}
