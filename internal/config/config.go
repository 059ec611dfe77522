package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceConfig is the service.yaml document for the analyzer service.
type ServiceConfig struct {
	Version int `yaml:"version"`
	Service struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"service"`
	Network struct {
		APIPort  int `yaml:"api_port"`
		MQTTPort int `yaml:"mqtt_port"`
		DBPort   int `yaml:"db_port"`
	} `yaml:"network"`
	Analysis struct {
		ComplexTypes []string `yaml:"complex_types"`
	} `yaml:"analysis"`
	MQTT struct {
		RequestTopic string `yaml:"request_topic"`
		ResultTopic  string `yaml:"result_topic"`
	} `yaml:"mqtt"`
}

// APIPort returns the configured API port, defaulting to 8080 if not set.
func (c *ServiceConfig) APIPort() int {
	if c.Network.APIPort == 0 {
		return 8080
	}
	return c.Network.APIPort
}

// ServiceID returns the configured service id, defaulting to "flowlens".
func (c *ServiceConfig) ServiceID() string {
	if c.Service.ID == "" {
		return "flowlens"
	}
	return c.Service.ID
}

// RequestTopic returns the MQTT topic analysis requests arrive on.
func (c *ServiceConfig) RequestTopic() string {
	if c.MQTT.RequestTopic == "" {
		return "workflows/analyze/request"
	}
	return c.MQTT.RequestTopic
}

// ResultTopic returns the MQTT topic analysis results are published to.
func (c *ServiceConfig) ResultTopic() string {
	if c.MQTT.ResultTopic == "" {
		return "workflows/analyze/result"
	}
	return c.MQTT.ResultTopic
}

// ComplexTypes returns the configured complex node type allowlist.
// An empty list means the analyzer's default set applies.
func (c *ServiceConfig) ComplexTypes() []string {
	return c.Analysis.ComplexTypes
}

// LoadServiceConfig reads and validates service.yaml.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ServiceConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported service.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}
