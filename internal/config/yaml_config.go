package config

import (
	"crypto/subtle"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Settings that are lists or maps live here rather than in env vars.
type YAMLConfig struct {
	APIClients []APIClientConfig `yaml:"api_clients"`
	Provider   ProviderConfig    `yaml:"provider"`
}

// APIClientConfig declares a service-to-service caller authenticated by a static bearer token.
type APIClientConfig struct {
	Name  string `yaml:"name"`
	Token string `yaml:"token"`
}

// ProviderConfig holds optional skip-trace provider request settings.
type ProviderConfig struct {
	Headers map[string]string `yaml:"headers,omitempty"` // Extra headers sent on every provider request
}

// LoadYAMLConfig loads the YAML configuration file at path.
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindAPIClient returns the client whose token matches, or nil.
func (c *YAMLConfig) FindAPIClient(token string) *APIClientConfig {
	if c == nil || token == "" {
		return nil
	}
	for i := range c.APIClients {
		if c.APIClients[i].Token == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(c.APIClients[i].Token), []byte(token)) == 1 {
			return &c.APIClients[i]
		}
	}
	return nil
}

// ProviderHeaders returns the extra provider headers, or nil.
func (c *YAMLConfig) ProviderHeaders() map[string]string {
	if c == nil {
		return nil
	}
	return c.Provider.Headers
}
