package main

import (
	"fmt"

	"tutelliv/pkg/types"

	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.TokenSecret == "" {
		return nil, fmt.Errorf("set TOKEN_SECRET")
	}

	return c, nil
}

func requireDatabase(c *types.Config) error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("set DATABASE_URL")
	}
	return nil
}
