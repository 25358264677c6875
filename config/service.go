package config

import (
	"fmt"

	"github.com/kbukum/audioscribe/logger"
)

// ServiceConfig is the part of the config shared by every command. Embed
// it with mapstructure ",squash" and add the command's own sections.
type ServiceConfig struct {
	Name    string        `yaml:"name" mapstructure:"name"`
	Version string        `yaml:"version" mapstructure:"version"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }

// ApplyDefaults fills the logging section; the console prefix follows Name
// unless set explicitly.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
