package config

import "fmt"

func validate(c *Config) error {
	if c.Settlement.BatchSize > 1000 {
		return fmt.Errorf("settlement.batch_size must be in [1,1000]")
	}
	if c.Outbox.BatchSize > 1000 {
		return fmt.Errorf("outbox.batch_size must be in [1,1000]")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	return nil
}
