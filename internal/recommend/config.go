package recommend

import (
	"errors"
	"fmt"
	"math"
)

// Config tunes scoring, decay and diversification. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Score blend weights for content similarity, category affinity and bias affinity.
	ContentWeight  float64 `json:"content_weight"`
	CategoryWeight float64 `json:"category_weight"`
	BiasWeight     float64 `json:"bias_weight"`

	// DecayDays is the time constant of interaction decay.
	DecayDays float64 `json:"decay_days"`

	// TrendingWindowDays is the age at which the trending recency bonus reaches zero.
	TrendingWindowDays float64 `json:"trending_window_days"`

	// MinPerCategory is the floor of the per-category cap; the cap is max(MinPerCategory, limit/3).
	MinPerCategory int `json:"min_per_category"`

	// OverflowRatio is the fill fraction of the limit below which capped categories may
	// still contribute results. Zero is treated as unset by MergeWithDefaults.
	OverflowRatio float64 `json:"overflow_ratio"`

	// DefaultLimit is used by callers that have no explicit limit.
	DefaultLimit int `json:"default_limit"`

	// RefreshCount is the default number of smart refresh results.
	RefreshCount int `json:"refresh_count"`

	// MinTokenLength is the shortest token the model keeps.
	MinTokenLength int `json:"min_token_length"`

	// StripMarkup removes HTML from article bodies before tokenizing.
	StripMarkup bool `json:"strip_markup"`

	// ProfileCacheSize is the number of user profiles kept between requests.
	ProfileCacheSize int `json:"profile_cache_size"`
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		ContentWeight:      0.7,
		CategoryWeight:     0.2,
		BiasWeight:         0.1,
		DecayDays:          30,
		TrendingWindowDays: 7,
		MinPerCategory:     2,
		OverflowRatio:      0.7,
		DefaultLimit:       10,
		RefreshCount:       3,
		MinTokenLength:     4,
		ProfileCacheSize:   10000,
	}
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	weights := []float64{c.ContentWeight, c.CategoryWeight, c.BiasWeight}
	var total float64
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return errors.New("score weights must be non-negative")
		}
		total += w
	}
	if total == 0 {
		return errors.New("at least one score weight must be positive")
	}

	if c.DecayDays <= 0 {
		return fmt.Errorf("decay_days must be positive, got %v", c.DecayDays)
	}
	if c.TrendingWindowDays <= 0 {
		return fmt.Errorf("trending_window_days must be positive, got %v", c.TrendingWindowDays)
	}
	if c.MinPerCategory < 1 {
		return fmt.Errorf("min_per_category must be at least 1, got %d", c.MinPerCategory)
	}
	if c.OverflowRatio < 0 || c.OverflowRatio > 1 {
		return fmt.Errorf("overflow_ratio must be within [0,1], got %v", c.OverflowRatio)
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be at least 1, got %d", c.DefaultLimit)
	}
	if c.RefreshCount < 1 {
		return fmt.Errorf("refresh_count must be at least 1, got %d", c.RefreshCount)
	}
	if c.MinTokenLength < 1 {
		return fmt.Errorf("min_token_length must be at least 1, got %d", c.MinTokenLength)
	}
	if c.ProfileCacheSize < 1 {
		return fmt.Errorf("profile_cache_size must be at least 1, got %d", c.ProfileCacheSize)
	}
	return nil
}

// MergeWithDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) MergeWithDefaults() {
	d := DefaultConfig()
	if c.ContentWeight == 0 && c.CategoryWeight == 0 && c.BiasWeight == 0 {
		c.ContentWeight, c.CategoryWeight, c.BiasWeight = d.ContentWeight, d.CategoryWeight, d.BiasWeight
	}
	if c.DecayDays == 0 {
		c.DecayDays = d.DecayDays
	}
	if c.TrendingWindowDays == 0 {
		c.TrendingWindowDays = d.TrendingWindowDays
	}
	if c.MinPerCategory == 0 {
		c.MinPerCategory = d.MinPerCategory
	}
	if c.OverflowRatio == 0 {
		c.OverflowRatio = d.OverflowRatio
	}
	if c.DefaultLimit == 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.RefreshCount == 0 {
		c.RefreshCount = d.RefreshCount
	}
	if c.MinTokenLength == 0 {
		c.MinTokenLength = d.MinTokenLength
	}
	if c.ProfileCacheSize == 0 {
		c.ProfileCacheSize = d.ProfileCacheSize
	}
}
