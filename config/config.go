package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

var GlobalConfig *Config

type Config struct {
	BasePath          string `json:"dataDirectory"`
	IPAddress         string `json:"ipAddress"`
	HttpServerPort    string `json:"port"`
	TelemetryPort     string `json:"telemetryPort"`
	AbciListenAddress string `json:"abciListenAddress"`
	Domain            string `json:"domain"`
}

func (c *Config) VerifyRequired() error {
	if c.BasePath == "" {
		return errors.New("required dataDirectory missing")
	}
	if c.HttpServerPort == "" {
		return errors.New("required port missing")
	}
	return nil
}

func ConfigFromFile(configPath string) (*Config, error) {
	config, err := ReadConfigJson(configPath)
	if err != nil {
		return nil, err
	}
	return config, nil
}

func ReadConfigJson(configPath string) (*Config, error) {
	config := GetDefaultConfig()
	log.Debugf("ConfigPath=%s", configPath)
	f, err := os.OpenFile(configPath, os.O_RDONLY|os.O_SYNC, 0)
	if err != nil {
		log.WithError(err).Error("OpenConfigFile")
		return nil, err
	}
	defer f.Close()

	err = json.NewDecoder(f).Decode(config)
	if err != nil {
		log.WithError(err).Error("DecodeConfig")
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	return config, nil
}

func GetDefaultConfig() *Config {
	config := &Config{
		BasePath:          DefaultBasePath,
		HttpServerPort:    DefaultHttpServerPort,
		TelemetryPort:     DefaultTelemetryPort,
		AbciListenAddress: DefaultAbciListenAddress,
	}
	return config
}
