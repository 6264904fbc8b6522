// Package cache holds the per-instance settings snapshot. It is primed at
// startup and kept fresh by the settings-events consumer, so storefront
// reads never wait on the table.
package cache

import (
	"encoding/json"
	"sync"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

type SettingsCache struct {
	mu       sync.RWMutex
	settings domain.Settings
	loaded   bool
}

func NewSettingsCache() *SettingsCache {
	return &SettingsCache{}
}

// Get returns the cached snapshot and whether it has been primed.
func (c *SettingsCache) Get() (domain.Settings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings, c.loaded
}

// Replace swaps in a full snapshot, marking the cache primed.
func (c *SettingsCache) Replace(s domain.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	c.loaded = true
}

// Apply patches one key in place. A cache that was never primed stays
// unprimed: a partial patch over zero values would masquerade as a full
// snapshot.
func (c *SettingsCache) Apply(key domain.SettingKey, raw json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil
	}
	return c.settings.Apply(key, raw)
}

// Invalidate forces the next read to reload from the store.
func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}
