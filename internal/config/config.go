package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/venuerank/internal/data/facade"
	"github.com/sawpanic/venuerank/internal/domain/gates"
	"github.com/sawpanic/venuerank/internal/domain/venue"
)

// VenueConfig is one venue entry in the engine configuration file.
type VenueConfig struct {
	ID                  string           `yaml:"id"`
	Enabled             bool             `yaml:"enabled"`
	ExtraFactor         string           `yaml:"extra_factor"`
	ContinuousLiquidity bool             `yaml:"continuous_liquidity"`
	Weights             venue.Weights    `yaml:"weights"`
	Thresholds          venue.Thresholds `yaml:"thresholds"`
}

// CacheConfig tunes the optional Redis snapshot cache.
type CacheConfig struct {
	Addr       string `yaml:"addr"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the snapshot cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Config is the full engine configuration.
type Config struct {
	Global gates.GlobalThresholds `yaml:"global_thresholds"`
	Fetch  facade.FetchSpec       `yaml:"fetch"`
	Guard  facade.GuardConfig     `yaml:"guard"`
	Cache  CacheConfig            `yaml:"cache"`
	Venues []VenueConfig          `yaml:"venues"`
}

// Load reads and parses an engine configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := NewWithDefaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// NewWithDefaults returns a configuration with the built-in engine
// defaults and no venues.
func NewWithDefaults() *Config {
	return &Config{
		Global: gates.DefaultGlobalThresholds(),
		Fetch:  facade.DefaultFetchSpec(),
		Guard:  facade.DefaultGuardConfig(),
		Cache:  CacheConfig{TTLSeconds: 30},
	}
}

// BuildProfiles constructs venue profiles for every enabled venue. A
// malformed venue entry (bad weights, unknown factor) fails only that
// venue's registration; its error is returned alongside the profiles that
// did validate.
func (c *Config) BuildProfiles() ([]*venue.Profile, []error) {
	var profiles []*venue.Profile
	var errs []error

	for _, vc := range c.Venues {
		if !vc.Enabled {
			continue
		}

		factor, err := venue.FactorByName(vc.ExtraFactor)
		if err != nil {
			errs = append(errs, fmt.Errorf("venue %s: %w", vc.ID, err))
			continue
		}

		opts := []venue.Option{venue.WithExtraFactor(factor)}
		if vc.ContinuousLiquidity {
			opts = append(opts, venue.WithContinuousLiquidity())
		}

		prof, err := venue.NewProfile(vc.ID, vc.Weights, vc.Thresholds, opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		profiles = append(profiles, prof)
	}
	return profiles, errs
}

// EnabledVenueIDs lists the enabled venue ids in file order.
func (c *Config) EnabledVenueIDs() []string {
	var ids []string
	for _, vc := range c.Venues {
		if vc.Enabled {
			ids = append(ids, vc.ID)
		}
	}
	return ids
}

// StaticAvailability is a fixed enabled-venue set, the config-backed
// implementation of the selector's availability source.
type StaticAvailability struct {
	ids []string
}

// NewStaticAvailability copies the given venue id set.
func NewStaticAvailability(ids []string) *StaticAvailability {
	out := make([]string, len(ids))
	copy(out, ids)
	return &StaticAvailability{ids: out}
}

// EnabledVenues implements selector.AvailabilitySource.
func (a *StaticAvailability) EnabledVenues(_ context.Context) ([]string, error) {
	out := make([]string, len(a.ids))
	copy(out, a.ids)
	return out, nil
}
