package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string `yaml:"env" env:"ENV" env-default:"local"`
	Server Server `yaml:"server"`
	GitLab GitLab `yaml:"gitlab"`
	Jira   Jira   `yaml:"jira"`
	Scan   Scan   `yaml:"scan"`
}

type Server struct {
	Host    string        `yaml:"host" env-default:"localhost"`
	Port    string        `yaml:"port" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// GitLab describes the source-control host connection. The token is taken
// from the environment only, never from the YAML file.
type GitLab struct {
	BaseURL string `yaml:"base_url" env:"GITLAB_BASE"`
	Project string `yaml:"project" env:"GITLAB_PROJECT"`
	Token   string `env:"GITLAB_TOKEN"`
}

// Jira describes the issue-tracker connection. Basic auth: user + API token.
type Jira struct {
	BaseURL string `yaml:"base_url" env:"JIRA_BASE"`
	User    string `yaml:"user" env:"JIRA_USER"`
	Token   string `env:"JIRA_TOKEN"`
}

// Scan holds pipeline defaults: which assignees to scan when a request does
// not override them, the page size for merge request listing, and the
// per-call HTTP timeout toward both upstreams.
type Scan struct {
	Assignees   []string      `yaml:"assignees"`
	PageSize    int           `yaml:"page_size" env-default:"100"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env-default:"30s"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}
