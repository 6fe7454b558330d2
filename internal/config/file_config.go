package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig holds optional values read from a YAML file. Environment variables win over them.
type FileConfig struct {
	AppName               string `yaml:"app_name"`
	Env                   string `yaml:"env"`
	APIBaseURL            string `yaml:"api_base_url"`
	DeepLinkScheme        string `yaml:"deep_link_scheme"`
	DataFolder            string `yaml:"data_folder"`
	SecureKeyFile         string `yaml:"secure_key_file"`
	RequestTimeout        string `yaml:"request_timeout"`
	MagicLinkPollInterval string `yaml:"magic_link_poll_interval"`
}

// Load builds the configuration from an optional YAML file. An empty path means environment only.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load read %s: %w", path, err)
	}
	var file FileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config.Load parse %s: %w", path, err)
	}
	return NewWithFile(file), nil
}
