package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/binpack/pkg/binpack"
)

// ErrInvalidSettings indicates the provided settings violate validation rules.
var ErrInvalidSettings = errors.New("settings require a positive bin capacity and a known strategy")

const defaultCapacity = 100

// Settings are the packing defaults applied when a request omits them.
type Settings struct {
	Capacity int
	Strategy binpack.Strategy
}

// Storage provides access to the packing defaults.
type Storage interface {
	GetSettings() (Settings, error)
	SetSettings(settings Settings) error
}

// MemoryStorage keeps settings in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStorage initialises storage with the default settings.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: DefaultSettings(),
	}
}

// DefaultSettings returns the built-in packing defaults.
func DefaultSettings() Settings {
	return Settings{
		Capacity: defaultCapacity,
		Strategy: binpack.StrategyFirstFitDecreasing,
	}
}

// GetSettings returns the currently configured settings.
func (s *MemoryStorage) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings, nil
}

// SetSettings validates, normalises, and stores the provided settings.
func (s *MemoryStorage) SetSettings(settings Settings) error {
	normalized, err := normalizeSettings(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = normalized
	s.mu.Unlock()

	return nil
}

func normalizeSettings(settings Settings) (Settings, error) {
	if settings.Capacity <= 0 {
		return Settings{}, fmt.Errorf("%w: capacity %d", ErrInvalidSettings, settings.Capacity)
	}

	strategy, err := binpack.ParseStrategy(string(settings.Strategy))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	return Settings{Capacity: settings.Capacity, Strategy: strategy}, nil
}
