package domain

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"sync"
)

// Config is an abstraction around the map that holds the engine config values
type Config struct {
	config map[string]interface{}
	lock   sync.RWMutex
}

// SetFromBytes sets the internal config based on YAML
func (c *Config) SetFromBytes(data []byte) error {
	var rawConfig interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return err
	}
	engineConfig, ok := rawConfig.(map[string]interface{})
	if !ok {
		return fmt.Errorf("config is not a map")
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.config = engineConfig
	return nil
}

// Get the config for a particular service, merged over the base section
func (c *Config) Get(serviceName string) (map[string]interface{}, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	base, ok := c.config["base"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("base config is not a map")
	}

	// If no config is defined for the service
	if _, ok = c.config[serviceName]; !ok {
		// Return the base config
		return base, nil
	}

	section, ok := c.config[serviceName].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("service %q config is not a map", serviceName)
	}

	// Merge the base config with the service config
	merged := make(map[string]interface{})
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range section {
		merged[k] = v
	}

	return merged, nil
}

// MarkupOverrides reads the estimator markup table, keyed by service type.
// Missing section means no overrides.
func (c *Config) MarkupOverrides() map[string]float64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	section, ok := c.config["markups"].(map[string]interface{})
	if !ok {
		return nil
	}
	overrides := make(map[string]float64, len(section))
	for serviceType, value := range section {
		switch v := value.(type) {
		case float64:
			overrides[serviceType] = v
		case int:
			overrides[serviceType] = float64(v)
		}
	}
	return overrides
}
