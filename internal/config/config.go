package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultPath = "config.yaml"
	EnvPrefix   = "REVIEWPULSE_"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Dataset    DatasetConfig    `koanf:"dataset"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Nouns      NounsConfig      `koanf:"nouns"`
	Events     EventsConfig     `koanf:"events"`
	Store      StoreConfig      `koanf:"store"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port string `koanf:"port"`
}

type DatasetConfig struct {
	Source string `koanf:"source"`
	Format string `koanf:"format"`
}

type ClassifierConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Token    string        `koanf:"token"`
	Prompt   string        `koanf:"prompt"`
	Timeout  time.Duration `koanf:"timeout"`
}

type NounsConfig struct {
	Endpoint  string        `koanf:"endpoint"`
	Token     string        `koanf:"token"`
	Prompt    string        `koanf:"prompt"`
	Timeout   time.Duration `koanf:"timeout"`
	MediumMin int           `koanf:"medium_min"`
	HighMin   int           `koanf:"high_min"`
}

type EventsConfig struct {
	WebhookURL string        `koanf:"webhook_url"`
	Page       string        `koanf:"page"`
	UserAgent  string        `koanf:"user_agent"`
	Timeout    time.Duration `koanf:"timeout"`
	Heartbeat  time.Duration `koanf:"heartbeat"`
	Kafka      KafkaConfig   `koanf:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type StoreConfig struct {
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	RedisAddr string `koanf:"redis_addr"`
	Prefix    string `koanf:"prefix"`
}

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: ":8080"},
		Dataset: DatasetConfig{
			Source: "reviews_test.tsv",
			Format: "tsv",
		},
		Classifier: ClassifierConfig{
			Endpoint: "https://api-inference.huggingface.co/models/siebert/sentiment-roberta-large-english",
			Timeout:  60 * time.Second,
		},
		Nouns: NounsConfig{
			Endpoint:  "https://api-inference.huggingface.co/models/bert-base-uncased",
			Prompt:    "Count the nouns in this review and return only High (>15), Medium (6-15), or Low (<6): ",
			Timeout:   60 * time.Second,
			MediumMin: 6,
			HighMin:   16,
		},
		Events: EventsConfig{
			Page:      "/",
			UserAgent: "reviewpulse/1.0",
			Timeout:   15 * time.Second,
			Heartbeat: 30 * time.Second,
			Kafka:     KafkaConfig{Topic: "reviewpulse.events"},
		},
		Store: StoreConfig{
			Driver: "file",
			Path:   ".reviewpulse.yaml",
			Prefix: "reviewpulse:",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (if it exists) and then REVIEWPULSE_* environment
// variables on top of the defaults. Nested keys use a double underscore:
// REVIEWPULSE_CLASSIFIER__TOKEN sets classifier.token.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "file":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the file driver")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Dataset.Format {
	case "tsv", "feed":
	default:
		return fmt.Errorf("unknown dataset format %q", c.Dataset.Format)
	}

	if c.Nouns.MediumMin <= 0 || c.Nouns.HighMin <= c.Nouns.MediumMin {
		return fmt.Errorf("nouns thresholds must satisfy 0 < medium_min < high_min (got %d, %d)",
			c.Nouns.MediumMin, c.Nouns.HighMin)
	}

	return nil
}
