package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"canteenopt/internal/agent"
	"canteenopt/internal/dataset"
	"canteenopt/internal/sim"
)

// Config is the application configuration, loaded once at process start
type Config struct {
	Server struct {
		Port        int    `yaml:"port"`
		MetricsPort int    `yaml:"metrics_port"`
		AuthSecret  string `yaml:"auth_secret"`
	} `yaml:"server"`

	Data    dataset.Paths `yaml:"data"`
	Bundle  string        `yaml:"bundle"`
	AuditDB string        `yaml:"audit_db"`

	Training struct {
		Episodes     int           `yaml:"episodes"`
		MaxSteps     int           `yaml:"max_steps"`
		Seed         int64         `yaml:"seed"`
		ActionLevels []int         `yaml:"action_levels"`
		Spread       string        `yaml:"spread"`
		Economics    sim.Economics `yaml:"economics"`
		Agent        agent.Config  `yaml:"agent"`
	} `yaml:"training"`

	Advisor struct {
		OpenAIKey string `yaml:"openai_key"`
		Model     string `yaml:"model"`
	} `yaml:"advisor"`
}

// Default returns a configuration with every field at its documented
// default, suitable to run against the synthetic datasets in ./data.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.Data = dataset.Paths{
		Sales:       "data/historical_sales.csv",
		Operational: "data/operational_data.csv",
		Weather:     "data/weather_data.csv",
		Academic:    "data/academic_calendar.csv",
	}
	cfg.Bundle = "models/bundle.json"
	cfg.AuditDB = "data/decisions.db"
	cfg.Training.Episodes = 150
	cfg.Training.MaxSteps = 1000
	cfg.Training.ActionLevels = sim.DefaultActionLevels
	cfg.Training.Spread = string(sim.SpreadDivide)
	cfg.Training.Economics = sim.DefaultEconomics()
	cfg.Training.Agent = agent.DefaultConfig()
	cfg.Advisor.Model = "gpt-4-turbo-preview"
	return cfg
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
