// Package config loads heapctl settings from a YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/internal/format"
)

const (
	envVarPrefix = "HEAPCTL"
	appName      = "heapctl"
)

// Region kinds.
const (
	RegionMemory = "memory"
	RegionMapped = "mapped"
)

// Config holds everything needed to build an allocator for a run.
// Environment variables (HEAPCTL_MODE, HEAPCTL_REGION, ...) override the file.
type Config struct {
	Mode     alloc.SearchMode `envconfig:"MODE"      yaml:"mode"`
	Region   string           `envconfig:"REGION"    yaml:"region"`
	Reserve  int              `envconfig:"RESERVE"   yaml:"reserve"`
	Limit    uint64           `envconfig:"LIMIT"     yaml:"limit"`
	MinSplit uint64           `envconfig:"MIN_SPLIT" yaml:"minSplit"`
	LogAlloc bool             `envconfig:"LOG_ALLOC" yaml:"logAlloc"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:     alloc.FirstFit,
		Region:   RegionMemory,
		Reserve:  1 << 20,
		MinSplit: format.MinSplit,
	}
}

// Load starts from Default, applies the YAML file at path and then the
// environment. An empty path falls back to $HEAPCTL_CONFIG_FILE and then
// to heapctl/config.yaml under the user config directory; a missing
// fallback file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(envVarPrefix + "_CONFIG_FILE")
		explicit = path != ""
	}
	if !explicit {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, appName, "config.yaml")
		}
	}

	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := c.decode(data); err != nil {
				return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("invalid configuration: mode / %s_MODE: %s", envVarPrefix, c.Mode)
	}
	if c.Region != RegionMemory && c.Region != RegionMapped {
		return fmt.Errorf(
			"invalid configuration: region / %s_REGION: %q is not %q or %q",
			envVarPrefix, c.Region, RegionMemory, RegionMapped,
		)
	}
	if c.Reserve <= 0 {
		return fmt.Errorf("invalid configuration: reserve / %s_RESERVE must be positive", envVarPrefix)
	}
	if c.Limit > uint64(c.Reserve) {
		return fmt.Errorf(
			"invalid configuration: limit / %s_LIMIT (%d) exceeds reserve (%d)",
			envVarPrefix, c.Limit, c.Reserve,
		)
	}
	return nil
}

// OpenRegion builds the configured region. The returned close function
// releases mapped reservations and is safe to call for memory regions.
func (c *Config) OpenRegion() (region.Region, func() error, error) {
	var (
		r       region.Region
		closeFn = func() error { return nil }
	)
	switch c.Region {
	case RegionMapped:
		m, err := region.NewMapped(c.Reserve)
		if err != nil {
			return nil, nil, err
		}
		r, closeFn = m, m.Close
	default:
		r = region.NewMemory(c.Reserve)
	}
	if c.Limit > 0 {
		r = region.NewLimited(r, c.Limit)
	}
	return r, closeFn, nil
}

// Options converts the allocator-facing settings.
func (c *Config) Options() []alloc.Option {
	return []alloc.Option{alloc.WithMode(c.Mode), alloc.WithMinSplit(c.MinSplit)}
}
