// Package settings provides typed configuration lookups with defaults,
// backed by the default_settings store and a read-through cache.
package settings

import (
	"context"
	"log/slog"
	"strconv"
)

// Service resolves configuration values by category and subcategory
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates a new settings service
func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{repo: repo, cache: cache}
}

// Get returns the configured value, or the default when the setting is
// absent or the lookup fails
func (s *Service) Get(ctx context.Context, category, subcategory, defaultValue string) string {
	key := category + "/" + subcategory
	if v, ok := s.cache.Get(ctx, key); ok {
		return v
	}

	v, found, err := s.repo.FindValue(ctx, category, subcategory)
	if err != nil {
		slog.Warn("Settings lookup failed", "err", err, "category", category, "subcategory", subcategory)
		return defaultValue
	}
	if !found {
		return defaultValue
	}

	s.cache.Set(ctx, key, v)
	return v
}

// GetInt returns the configured value as an integer
func (s *Service) GetInt(ctx context.Context, category, subcategory string, defaultValue int) int {
	v := s.Get(ctx, category, subcategory, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Setting is not a valid integer", "category", category, "subcategory", subcategory, "value", v)
		return defaultValue
	}
	return n
}

// GetBool returns the configured value as a boolean
func (s *Service) GetBool(ctx context.Context, category, subcategory string, defaultValue bool) bool {
	v := s.Get(ctx, category, subcategory, "")
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Setting is not a valid boolean", "category", category, "subcategory", subcategory, "value", v)
		return defaultValue
	}
	return b
}

// ClearCache drops the cached settings snapshot. Called after a save that
// may change how settings resolve for subsequent reads.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
}
