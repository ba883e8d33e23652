package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/elemental/internal/chaos"
	"github.com/udisondev/elemental/internal/combo"
	"github.com/udisondev/elemental/internal/element"
	"github.com/udisondev/elemental/internal/model"
	"github.com/udisondev/elemental/internal/resistance"
	"github.com/udisondev/elemental/internal/spatial"
	"github.com/udisondev/elemental/internal/status"
)

// ChaosRandom selects a random modifier at run start.
const ChaosRandom = "random"

// ErrUnknownTemplate is returned when a wave names a template that is not defined.
var ErrUnknownTemplate = errors.New("unknown enemy template")

// ErrOutOfRange is returned for numeric settings outside their bounds.
var ErrOutOfRange = errors.New("value out of range")

// Bounds on spatial and wave settings. A grid query scans
// (2*radius/cell_size)^2 cells, so radii and cell size are capped together.
const (
	MaxRadius         = 50.0
	MinCellSize       = 0.5
	MaxWaves          = 1000
	MaxEnemiesPerWave = 5000
)

// Arena holds all configuration for a simulated run.
type Arena struct {
	LogLevel string `yaml:"log_level"` // debug|info|warn|error
	Seed     uint64 `yaml:"seed"`

	// Chaos is "none", "random" or a modifier key such as "zero_kelvin".
	Chaos string `yaml:"chaos"`

	Combo       combo.Config `yaml:"combo"`
	ChainRadius float64      `yaml:"chain_radius"`
	CellSize    float64      `yaml:"cell_size"`

	Simulation Simulation       `yaml:"simulation"`
	Templates  []model.Template `yaml:"templates"`

	Database DatabaseConfig `yaml:"database"`
}

// Simulation drives the headless wave loop.
type Simulation struct {
	Waves          int      `yaml:"waves"`
	EnemiesPerWave int      `yaml:"enemies_per_wave"`
	WaveSeconds    float64  `yaml:"wave_seconds"`
	TickDelta      float64  `yaml:"tick_delta"`   // seconds per step
	FrameJitter    float64  `yaml:"frame_jitter"` // max extra seconds added to a step
	HitsPerSecond  float64  `yaml:"hits_per_second"`
	HitDamage      float64  `yaml:"hit_damage"`
	ArenaSize      float64  `yaml:"arena_size"`
	WaveTemplates  []string `yaml:"wave_templates"`
}

// DatabaseConfig holds PostgreSQL connection parameters for run summaries.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"` // overrides the discrete fields when set
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultArena returns Arena config with sensible defaults.
func DefaultArena() Arena {
	return Arena{
		LogLevel:    "info",
		Seed:        1,
		Chaos:       ChaosRandom,
		Combo:       combo.DefaultConfig(),
		ChainRadius: status.DefaultChainRange,
		CellSize:    spatial.DefaultCellSize,
		Simulation: Simulation{
			Waves:          3,
			EnemiesPerWave: 12,
			WaveSeconds:    20,
			TickDelta:      1.0 / 60,
			FrameJitter:    0,
			HitsPerSecond:  6,
			HitDamage:      12,
			ArenaSize:      20,
			WaveTemplates:  []string{"grunt", "salamander", "frost_wraith"},
		},
		Templates: []model.Template{
			{Name: "grunt", MaxHP: 120, MoveSpeed: 3},
			{Name: "salamander", MaxHP: 90, MoveSpeed: 4, Resistances: []resistance.Entry{
				{Element: element.Fire, Class: resistance.Immune},
				{Element: element.Ice, Class: resistance.Weak},
			}},
			{Name: "frost_wraith", MaxHP: 150, MoveSpeed: 2.5, Resistances: []resistance.Entry{
				{Element: element.Ice, Class: resistance.Resistant},
				{Element: element.Fire, Class: resistance.Weak},
				{Element: element.Poison, Class: resistance.Immune},
			}},
		},
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "arena",
			Password: "arena",
			DBName:   "arena",
			SSLMode:  "disable",
		},
	}
}

// LoadArena loads config from a YAML file and applies environment overrides.
// If the file doesn't exist, defaults are used.
func LoadArena(path string) (Arena, error) {
	cfg := DefaultArena()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (a Arena) Validate() error {
	if _, _, err := a.ChaosChoice(); err != nil {
		return err
	}
	for _, t := range a.Templates {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, name := range a.Simulation.WaveTemplates {
		if _, err := a.Template(name); err != nil {
			return err
		}
	}
	if a.Simulation.TickDelta <= 0 {
		return fmt.Errorf("simulation.tick_delta must be positive, got %v", a.Simulation.TickDelta)
	}

	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"combo.radius", a.Combo.Radius, 0, MaxRadius},
		{"chain_radius", a.ChainRadius, 0, MaxRadius},
		{"cell_size", a.CellSize, MinCellSize, MaxRadius},
		{"simulation.waves", float64(a.Simulation.Waves), 1, MaxWaves},
		{"simulation.enemies_per_wave", float64(a.Simulation.EnemiesPerWave), 1, MaxEnemiesPerWave},
	}
	for _, c := range checks {
		if c.v <= 0 || c.v < c.min || c.v > c.max {
			return fmt.Errorf("%s = %v, want %v..%v: %w", c.name, c.v, c.min, c.max, ErrOutOfRange)
		}
	}
	return nil
}

// ChaosChoice resolves the chaos setting into a fixed kind or a random pick.
func (a Arena) ChaosChoice() (chaos.Kind, bool, error) {
	if a.Chaos == ChaosRandom {
		return chaos.None, true, nil
	}
	if a.Chaos == "" {
		return chaos.None, false, nil
	}
	k, err := chaos.Parse(a.Chaos)
	if err != nil {
		return chaos.None, false, fmt.Errorf("chaos: %w", err)
	}
	return k, false, nil
}

// Template looks up an enemy template by name.
func (a Arena) Template(name string) (model.Template, error) {
	for _, t := range a.Templates {
		if t.Name == name {
			return t, nil
		}
	}
	return model.Template{}, fmt.Errorf("%q: %w", name, ErrUnknownTemplate)
}
