// YAML config loader with CUE validation integration
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var defaultSchema []byte

// ErrInvalid is returned when a loaded or overridden value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Overtake holds the operator-tunable overtake settings.
type Overtake struct {
	Mode           string        `yaml:"mode"`
	MinSpeedKph    float64       `yaml:"min_speed_kph"`
	SpeedDiffKph   float64       `yaml:"speed_diff_kph"`
	MinLaneWidthM  float64       `yaml:"min_lane_width_m"`
	MinLaneProb    float64       `yaml:"min_lane_prob"`
	MaxCurvature   float64       `yaml:"max_curvature"`
	DebounceFrames int           `yaml:"debounce_frames"`
	Cooldown       time.Duration `yaml:"cooldown"`
}

// Transmit configures the outbound navigation packet channel.
type Transmit struct {
	Target         string `yaml:"target"`
	MinIntervalMs  int    `yaml:"min_interval_ms"`
	MaxPacketBytes int    `yaml:"max_packet_bytes"`
}

// MinInterval returns MinIntervalMs as a duration.
func (t Transmit) MinInterval() time.Duration {
	return time.Duration(t.MinIntervalMs) * time.Millisecond
}

// Ingest configures the vehicle feed and navigation listener.
type Ingest struct {
	Address        string        `yaml:"address"`
	NavListen      string        `yaml:"nav_listen"`
	Heartbeat      time.Duration `yaml:"heartbeat"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	DataTimeout    time.Duration `yaml:"data_timeout"`
}

// Staleness is the consumer-side snapshot age policy.
type Staleness struct {
	StaleAfter      time.Duration `yaml:"stale_after"`
	DisconnectAfter time.Duration `yaml:"disconnect_after"`
}

// Admin configures the HTTP admin surface.
type Admin struct {
	Addr string `yaml:"addr"`
}

// Greptime configures the GreptimeDB sink.
type Greptime struct {
	Endpoint     string `yaml:"endpoint"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	VerdictTable string `yaml:"verdict_table"`
	StatsTable   string `yaml:"stats_table"`
}

// Config is the root configuration.
type Config struct {
	VehicleID string        `yaml:"vehicle_id"`
	Tick      time.Duration `yaml:"tick"`
	Log       Log           `yaml:"log"`
	Overtake  Overtake      `yaml:"overtake"`
	Transmit  Transmit      `yaml:"transmit"`
	Ingest    Ingest        `yaml:"ingest"`
	Staleness Staleness     `yaml:"staleness"`
	Admin     Admin         `yaml:"admin"`
	Greptime  Greptime      `yaml:"greptime"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		VehicleID: "car-01",
		Tick:      100 * time.Millisecond,
		Log:       Log{Level: "info", Format: "text"},
		Overtake: Overtake{
			Mode:           "disabled",
			MinSpeedKph:    60,
			SpeedDiffKph:   10,
			MinLaneWidthM:  2.8,
			MinLaneProb:    0.7,
			MaxCurvature:   0.02,
			DebounceFrames: 3,
			Cooldown:       5 * time.Second,
		},
		Transmit: Transmit{MinIntervalMs: 200, MaxPacketBytes: 4096},
		Ingest: Ingest{
			Heartbeat:      5 * time.Second,
			ReconnectDelay: 2 * time.Second,
			ReadTimeout:    30 * time.Second,
			DataTimeout:    15 * time.Second,
		},
		Staleness: Staleness{StaleAfter: 2 * time.Second, DisconnectAfter: 4 * time.Second},
		Admin:     Admin{Addr: ":8080"},
		Greptime: Greptime{
			Port:         4001,
			Database:     "public",
			VerdictTable: "overtake_verdicts",
			StatsTable:   "nav_tx_stats",
		},
	}
}

// Load reads a YAML config, validates it against a CUE schema and applies
// environment overrides. An empty configPath yields the defaults; an empty
// cueSchemaPath uses the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	var data []byte
	if configPath != "" {
		b, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read YAML config: %w", err)
		}
		data = b
	}
	schema := defaultSchema
	if cueSchemaPath != "" {
		b, err := os.ReadFile(cueSchemaPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read CUE schema: %w", err)
		}
		schema = b
	}
	cfg, err := Parse(data, schema)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse validates data against schema and decodes it over the defaults.
func Parse(data, schema []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := ValidateWithCue(data, schema); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateWithCue checks YAML bytes against the #Config definition in schema.
func ValidateWithCue(data, schema []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(schema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("schema has no #Config: %w", err)
	}

	file, err := cueyaml.Extract("config.yaml", data)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if err := configVal.Err(); err != nil {
		return fmt.Errorf("cannot build YAML config: %w", err)
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from GREPTIMEDB_ENDPOINT, TICK_INTERVAL and VEHICLE_ID.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		c.Greptime.Endpoint = v
	}
	if v := os.Getenv("VEHICLE_ID"); v != "" {
		c.VehicleID = v
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		c.Tick = d
	}
	return c.Validate()
}

// Validate checks the cross-field rules the schema cannot express.
func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive", ErrInvalid)
	}
	if c.Staleness.DisconnectAfter < c.Staleness.StaleAfter {
		return fmt.Errorf("%w: disconnect_after must not be shorter than stale_after", ErrInvalid)
	}
	return nil
}
