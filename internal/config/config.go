package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           string  `envconfig:"PORT" default:"8081"`
	DBDSN          string  `envconfig:"DB_DSN" default:"dealforge.db"`
	LogFile        string  `envconfig:"LOG_FILE" default:"./dealforge.log"`
	TemplateDir    string  `envconfig:"TEMPLATE_DIR" default:"./web/templates"`
	LatencyScale   float64 `envconfig:"LATENCY_SCALE" default:"1"`
	AdminTokenHash string  `envconfig:"ADMIN_TOKEN_HASH"`
	RateLimit      int     `envconfig:"RATE_LIMIT" default:"60"`
}

// Load reads the environment. Malformed values fall back to the defaults.
func Load() Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Printf("[config] %v; using defaults", err)
		cfg = Defaults()
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s TEMPLATE_DIR=%s LATENCY_SCALE=%g ADMIN=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.TemplateDir, cfg.LatencyScale, cfg.AdminTokenHash != "")
	return cfg
}

func Defaults() Config {
	return Config{
		Port:         "8081",
		DBDSN:        "dealforge.db",
		LogFile:      "./dealforge.log",
		TemplateDir:  "./web/templates",
		LatencyScale: 1,
		RateLimit:    60,
	}
}
