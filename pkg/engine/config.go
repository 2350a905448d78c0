package engine

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds all parameters of the interpolation service.
type Config struct {
	Listen          string        `yaml:"listen" json:"listen"`
	BasePath        string        `yaml:"basePath" json:"basePath"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes" json:"maxBodyBytes"`
	MaxPoints       int           `yaml:"maxPoints" json:"maxPoints"` // 0 = unlimited
	MaxExprDepth    int           `yaml:"maxExprDepth" json:"maxExprDepth"`
	MaxExprNodes    int           `yaml:"maxExprNodes" json:"maxExprNodes"`
	CompileCacheTTL time.Duration `yaml:"compileCacheTTL" json:"compileCacheTTL"` // 0 disables the cache
	CacheMaxEntries int           `yaml:"cacheMaxEntries" json:"cacheMaxEntries"`
	CacheMaxSource  int           `yaml:"cacheMaxSource" json:"cacheMaxSource"` // bytes; longer sources are compiled uncached
	FitTolerance    float64       `yaml:"fitTolerance" json:"fitTolerance"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" json:"allowedOrigins"`
	Format          string        `yaml:"format" json:"format"` // "text", "json" or "latex"
	Workers         int           `yaml:"workers" json:"workers"`
	ReadTimeout     time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Listen:          ":3000",
		BasePath:        "/api/lagrange",
		MaxBodyBytes:    1 << 20,
		MaxPoints:       0,
		MaxExprDepth:    0,
		MaxExprNodes:    0,
		CompileCacheTTL: 10 * time.Minute,
		CacheMaxEntries: 1024,
		CacheMaxSource:  64 << 10,
		FitTolerance:    1e-9,
		AllowedOrigins:  []string{"*"},
		Format:          "text",
		Workers:         runtime.NumCPU(),
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Listen == "":
		return fmt.Errorf("%w: listen address is empty", ErrInvalidConfig)
	case !strings.HasPrefix(cfg.BasePath, "/"):
		return fmt.Errorf("%w: base path %q must start with /", ErrInvalidConfig, cfg.BasePath)
	case cfg.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: maxBodyBytes must be positive", ErrInvalidConfig)
	case cfg.MaxPoints < 0 || cfg.MaxExprDepth < 0 || cfg.MaxExprNodes < 0,
		cfg.CacheMaxEntries < 0 || cfg.CacheMaxSource < 0:
		return fmt.Errorf("%w: size limits must not be negative", ErrInvalidConfig)
	case cfg.CompileCacheTTL < 0 || cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	case cfg.FitTolerance < 0:
		return fmt.Errorf("%w: fitTolerance must not be negative", ErrInvalidConfig)
	case cfg.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case !validFormat(cfg.Format):
		return fmt.Errorf("%w: unknown format %q (want text, json or latex)", ErrInvalidConfig, cfg.Format)
	}
	return nil
}
