package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/cache"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/repository"
)

// SettingsService serves storefront configuration cache-first and keeps
// every instance's cache fresh through settings-changed events.
type SettingsService struct {
	store  SettingsStore
	cache  *cache.SettingsCache
	events EventPublisher
	logger *zap.Logger
}

func NewSettingsService(store SettingsStore, c *cache.SettingsCache, events EventPublisher, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		cache:  c,
		events: events,
		logger: logger,
	}
}

// Load reads all stored settings over the defaults and primes the cache.
// Rows under unknown or malformed keys are skipped with a warning instead
// of poisoning the snapshot.
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	settings := domain.DefaultSettings()
	for key, raw := range rows {
		if err := settings.Apply(key, raw); err != nil {
			s.logger.Warn("Skipping malformed setting",
				zap.String("key", string(key)),
				zap.Error(err))
		}
	}

	s.cache.Replace(settings)
	return settings, nil
}

// All returns the settings snapshot, loading it on the first call.
func (s *SettingsService) All(ctx context.Context) (domain.Settings, error) {
	if settings, ok := s.cache.Get(); ok {
		return settings, nil
	}
	return s.Load(ctx)
}

// Get returns the stored raw value for one key, or its default rendered
// to JSON when the key has never been written.
func (s *SettingsService) Get(ctx context.Context, key domain.SettingKey) (json.RawMessage, error) {
	if !key.Valid() {
		return nil, &domain.ValidationError{Field: "key", Reason: "unknown setting " + string(key)}
	}

	raw, err := s.store.Get(ctx, key)
	if err == nil {
		return raw, nil
	}
	if !errors.Is(err, repository.ErrSettingNotFound) {
		return nil, err
	}

	defaults := domain.DefaultSettings()
	var section any
	switch key {
	case domain.SettingContact:
		section = defaults.Contact
	case domain.SettingHero:
		section = defaults.Hero
	case domain.SettingBanners:
		section = defaults.Banners
	case domain.SettingCategories:
		section = defaults.Categories
	}
	return json.Marshal(section)
}

// Put validates the payload against the key's schema, persists it, patches
// the local cache, and announces the change so other instances refresh.
func (s *SettingsService) Put(ctx context.Context, key domain.SettingKey, raw json.RawMessage) error {
	if !key.Valid() {
		return &domain.ValidationError{Field: "key", Reason: "unknown setting " + string(key)}
	}
	if err := domain.ValidateSetting(key, raw); err != nil {
		return err
	}

	if err := s.store.Put(ctx, key, raw); err != nil {
		return err
	}

	if err := s.cache.Apply(key, raw); err != nil {
		s.logger.Error("Failed to patch settings cache", zap.Error(err))
		s.cache.Invalidate()
	}

	if s.events != nil {
		if err := s.events.PublishSettingChanged(ctx, key, raw); err != nil {
			s.logger.Error("Failed to publish setting change",
				zap.String("key", string(key)),
				zap.Error(err))
		}
	}

	s.logger.Info("Setting updated", zap.String("key", string(key)))
	return nil
}

// ApplyRemote patches the cache with a change made by another instance.
func (s *SettingsService) ApplyRemote(key domain.SettingKey, raw json.RawMessage) error {
	if !key.Valid() {
		return &domain.ValidationError{Field: "key", Reason: "unknown setting " + string(key)}
	}
	if err := s.cache.Apply(key, raw); err != nil {
		s.cache.Invalidate()
		return err
	}
	return nil
}
