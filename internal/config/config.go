package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Telegram struct {
		Token string `yaml:"token"`
		Admin string `yaml:"admin"` // username allowed to broadcast/upload
	} `yaml:"telegram"`
	Quiz struct {
		SessionTTL   string `yaml:"session_ttl"`
		PoolCacheTTL string `yaml:"pool_cache_ttl"`
	} `yaml:"quiz"`
	Broadcast struct {
		Concurrency int    `yaml:"concurrency"`
		SendTimeout string `yaml:"send_timeout"`
	} `yaml:"broadcast"`
	Chats struct {
		Seed []string `yaml:"seed"`
	} `yaml:"chats"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
