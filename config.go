package main

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration, loaded once at startup and
// passed explicitly into each component's constructor.
type Config struct {
	Location struct {
		Lat float64 `yaml:"lat"`
		Lon float64 `yaml:"lon"`
	} `yaml:"location"`

	Simulation struct {
		PlannerVariant   string  `yaml:"planner_variant"`
		ElevationPenalty float64 `yaml:"elevation_penalty"`
		StepSize         float64 `yaml:"step_size"`
		MaxIterations    int     `yaml:"max_iterations"`
		TourMetric       string  `yaml:"tour_metric"`
		Seed             int64   `yaml:"seed"`
	} `yaml:"simulation"`

	DroneSimulator struct {
		DroneID         string  `yaml:"drone_id"`
		SpeedMPS        float64 `yaml:"speed_mps"`
		IntervalMS      int     `yaml:"interval_ms"`
		GPSNoiseStd     float64 `yaml:"gps_noise_std"`
		CellSizeM       float64 `yaml:"cell_size_m"`
		GridRows        int     `yaml:"grid_rows"`
		GridCols        int     `yaml:"grid_cols"`
		SimplifyEpsilon float64 `yaml:"simplify_epsilon"`
	} `yaml:"drone_simulator"`

	Paths struct {
		World      string `yaml:"world"`
		FlightPlan string `yaml:"flight_plan"`
	} `yaml:"paths"`

	Influx struct {
		URL    string `yaml:"url"`
		Token  string `yaml:"token"`
		Org    string `yaml:"org"`
		Bucket string `yaml:"bucket"`
	} `yaml:"influx"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// envPattern matches ${VAR} or ${VAR:default} placeholders.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)(?::([^}]*))?\}`)

// LoadConfig reads a YAML configuration file, expanding ${VAR:default}
// placeholders from the environment before decoding.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars substitutes ${VAR} and ${VAR:default} with environment
// values. An unset variable without a default expands to empty.
func expandEnvVars(text string) string {
	return envPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(groups[1]); ok {
			return value
		}
		return groups[2]
	})
}

// DefaultConfig returns a configuration with working defaults for
// every knob; loaded files override only the fields they set.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Location.Lat = 50.85
	cfg.Location.Lon = 5.69
	cfg.Simulation.PlannerVariant = "astar"
	cfg.Simulation.ElevationPenalty = 1.0
	cfg.Simulation.StepSize = 1.0
	cfg.Simulation.MaxIterations = 1000
	cfg.Simulation.TourMetric = "geodesic"
	cfg.DroneSimulator.SpeedMPS = 5.0
	cfg.DroneSimulator.IntervalMS = 1000
	cfg.DroneSimulator.GPSNoiseStd = 0.00001
	cfg.DroneSimulator.CellSizeM = 10.0
	cfg.DroneSimulator.GridRows = 256
	cfg.DroneSimulator.GridCols = 256
	cfg.Server.Addr = ":8080"
	return cfg
}
