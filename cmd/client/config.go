package main

import "github.com/kelseyhightower/envconfig"

type Config struct {
	RelayAddr string `envconfig:"RELAY_ADDR" default:"localhost:8080"`
	UserID    string `envconfig:"RELAY_USER_ID" required:"true"`
	// RELAY_COLOURS enables colorized event output
	Colours  bool   `envconfig:"RELAY_COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
