package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/*
 * yaml config loader for the server daemon
 */

//server daemon config root
type ServerFile struct {
	Host      string     `yaml:"host"`
	Port      int        `yaml:"port"`
	Password  string     `yaml:"password"`
	Salt      string     `yaml:"salt"`
	LogLevel  string     `yaml:"log_level"`
	StoreDir  string     `yaml:"store_dir"`
	Rooms     []RoomConf `yaml:"rooms"`
	MetricsOn bool       `yaml:"metrics"`
}

//load server config from a yaml file
func Load(path string) (*ServerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg ServerFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port <= 0 {
		cfg.Port = 6100
	}
	return &cfg, nil
}
