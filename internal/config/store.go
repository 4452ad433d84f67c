package config

import "sync/atomic"

// Store holds the current configuration and supports atomic swaps, so the
// follow pipeline sees reloads without locking.
type Store struct {
	v atomic.Pointer[Config]
}

// NewStore creates a Store with the initial configuration.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.v.Store(cfg)
	return s
}

// Current returns the current configuration.
func (s *Store) Current() *Config {
	return s.v.Load()
}

// Update replaces the current configuration. nil is ignored.
func (s *Store) Update(cfg *Config) {
	if cfg == nil {
		return
	}
	s.v.Store(cfg)
}
