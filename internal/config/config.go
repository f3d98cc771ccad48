// Package config loads the YAML configuration shared by the relay and
// the client binaries. Flags in the cmd mains override whatever the file
// provides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Relay  RelayConfig  `yaml:"relay"`
	Client ClientConfig `yaml:"client"`
}

type RelayConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type ClientConfig struct {
	ServerAddr string `yaml:"server_addr"`
	Username   string `yaml:"username"`
	Room       string `yaml:"room"`
	LocalPort  int    `yaml:"local_port"`
}

func Default() Config {
	return Config{
		Relay:  RelayConfig{ListenAddr: ":8080"},
		Client: ClientConfig{ServerAddr: "127.0.0.1:8080"},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config YAML: %w", err)
	}
	return cfg, nil
}
