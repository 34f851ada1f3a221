// Package mock provides test doubles for snipwatch interfaces.
package mock

import "github.com/fwojciec/snipwatch"

// Compile-time interface verification.
var _ snipwatch.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a mock implementation of snipwatch.ConfigStore.
type ConfigStore struct {
	LoadFn func() (*snipwatch.Config, error)
	SaveFn func(cfg *snipwatch.Config) error
}

func (s *ConfigStore) Load() (*snipwatch.Config, error) {
	return s.LoadFn()
}

func (s *ConfigStore) Save(cfg *snipwatch.Config) error {
	return s.SaveFn(cfg)
}
