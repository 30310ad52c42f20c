package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultServer is used when neither the flag nor a config file name one.
const defaultServer = "http://127.0.0.1:4096"

// Config holds octail settings from .octail.yaml.
type Config struct {
	Server     string `yaml:"server"`
	Session    string `yaml:"session"`
	Reconnect  bool   `yaml:"reconnect"`
	BufferSize int    `yaml:"buffer_size"`
}

// loadConfig loads octail settings. Without an explicit path it tries
// .octail.yaml in the working directory, then in the home directory, and
// falls back to defaults when neither exists. An explicit path must exist.
func loadConfig(path string) (*Config, error) {
	config := &Config{Server: defaultServer}

	data, err := readConfigFile(path)
	if err != nil {
		if path == "" && os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if config.Server == "" {
		config.Server = defaultServer
	}

	return config, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}

	if data, err := os.ReadFile(".octail.yaml"); err == nil || !os.IsNotExist(err) {
		return data, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(home, ".octail.yaml"))
}
