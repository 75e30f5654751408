package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"voxelview/internal/world"
)

// Config holds load-time viewer settings. It is read once at startup and
// passed by value; nothing here is global.
type Config struct {
	ChunkSize       int        `yaml:"chunk_size"`
	ViewRadius      int        `yaml:"view_radius"`
	EvictHysteresis int        `yaml:"evict_hysteresis"`
	WorldSeed       string     `yaml:"world_seed"`
	BaseBlock       int        `yaml:"base_block"`
	CameraInitial   [3]float32 `yaml:"camera_initial_position"`
	MoveSpeed       float32    `yaml:"move_speed"`
	MaxFrameDelta   float64    `yaml:"max_frame_delta"`
	FPSLimit        int        `yaml:"fps_limit"`
	Endpoint        string     `yaml:"endpoint"`

	Generator Generator `yaml:"generator"`
	Fetch     Fetch     `yaml:"fetch"`
	Fallback  Fallback  `yaml:"fallback"`
	DebugHull DebugHull `yaml:"debug_hull"`
}

// Generator holds the remote generator hyperparameters sent with every request.
type Generator struct {
	SurfaceScale   float64 `yaml:"surface_scale"`
	CavesScale     float64 `yaml:"caves_scale"`
	CavesThreshold float64 `yaml:"caves_threshold"`
	GrassDepth     int     `yaml:"grass_depth"`
	DirtDepth      int     `yaml:"dirt_depth"`
}

// Fetch tunes network retrieval and scheduling.
type Fetch struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	BackoffBase  time.Duration `yaml:"backoff_base"`
	LoadStagger  time.Duration `yaml:"load_stagger"`
	EvictStagger time.Duration `yaml:"evict_stagger"`
	CacheEntries int           `yaml:"cache_entries"`
}

// Fallback tunes the local generator used when the remote one fails.
type Fallback struct {
	GrassDepth   int `yaml:"grass_depth"`
	DirtDepthMin int `yaml:"dirt_depth_min"`
	DirtDepthMax int `yaml:"dirt_depth_max"`
}

// DebugHull styles the wireframe box drawn around each chunk.
type DebugHull struct {
	Opacity float32 `yaml:"opacity"`
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		ChunkSize:       16,
		ViewRadius:      6,
		EvictHysteresis: 1,
		WorldSeed:       "voxelview",
		BaseBlock:       int(world.BlockTypeStone),
		CameraInitial:   [3]float32{0, 24, 0},
		MoveSpeed:       30,
		MaxFrameDelta:   0.05,
		FPSLimit:        120,
		Endpoint:        "http://127.0.0.1:8080/api/chunk",
		Generator: Generator{
			SurfaceScale:   0.06,
			CavesScale:     0.18,
			CavesThreshold: 0.70,
			GrassDepth:     3,
			DirtDepth:      3,
		},
		Fetch: Fetch{
			Timeout:      10 * time.Second,
			MaxRetries:   3,
			BackoffBase:  time.Second,
			LoadStagger:  50 * time.Millisecond,
			EvictStagger: 10 * time.Millisecond,
			CacheEntries: 2048,
		},
		Fallback: Fallback{
			GrassDepth:   2,
			DirtDepthMin: 1,
			DirtDepthMax: 4,
		},
		DebugHull: DebugHull{Opacity: 0.35},
	}
}

// Load reads a YAML file on top of Defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Base returns the configured base block.
func (c Config) Base() world.BlockType {
	return world.BlockType(c.BaseBlock)
}

// KeepRadius is the Chebyshev distance beyond which live chunks are evicted.
func (c Config) KeepRadius() int {
	return c.ViewRadius + c.EvictHysteresis
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 1:
		return fmt.Errorf("chunk_size must be > 1, got %d", c.ChunkSize)
	case c.ViewRadius < 0:
		return fmt.Errorf("view_radius must be >= 0, got %d", c.ViewRadius)
	case c.EvictHysteresis < 0:
		return fmt.Errorf("evict_hysteresis must be >= 0, got %d", c.EvictHysteresis)
	case c.BaseBlock < 0 || c.BaseBlock > 255 || !c.Base().Valid() || c.Base() == world.BlockTypeAir:
		return fmt.Errorf("base_block %d is not a solid block", c.BaseBlock)
	case c.MoveSpeed <= 0:
		return fmt.Errorf("move_speed must be > 0, got %v", c.MoveSpeed)
	case c.MaxFrameDelta <= 0:
		return fmt.Errorf("max_frame_delta must be > 0, got %v", c.MaxFrameDelta)
	case c.FPSLimit < 0:
		return fmt.Errorf("fps_limit must be >= 0, got %d", c.FPSLimit)
	case c.Endpoint == "":
		return errors.New("endpoint is empty")
	case c.Fetch.Timeout <= 0:
		return fmt.Errorf("fetch.timeout must be > 0, got %v", c.Fetch.Timeout)
	case c.Fetch.MaxRetries < 0:
		return fmt.Errorf("fetch.max_retries must be >= 0, got %d", c.Fetch.MaxRetries)
	case c.Fetch.BackoffBase < 0 || c.Fetch.LoadStagger < 0 || c.Fetch.EvictStagger < 0:
		return errors.New("fetch delays must be >= 0")
	case c.Fallback.DirtDepthMin < 0 || c.Fallback.DirtDepthMax < c.Fallback.DirtDepthMin:
		return fmt.Errorf("fallback dirt depth range [%d,%d] is invalid", c.Fallback.DirtDepthMin, c.Fallback.DirtDepthMax)
	case c.DebugHull.Opacity < 0 || c.DebugHull.Opacity > 1:
		return fmt.Errorf("debug_hull.opacity must be within [0,1], got %v", c.DebugHull.Opacity)
	}
	return nil
}
