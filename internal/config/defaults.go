package config

const (
	defaultAppEnv             = "dev"
	defaultAppLogLevel        = "info"
	defaultAppHTTPAddr        = ":9983"
	defaultDatabasePath       = "data/fundcore.db"
	defaultSettlementBatch    = 10
	defaultSettlementInterval = 120
	defaultOutboxBatch        = 10
	defaultOutboxInterval     = 120
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Settlement.BatchSize <= 0 {
		c.Settlement.BatchSize = defaultSettlementBatch
	}
	if c.Settlement.IntervalSeconds <= 0 {
		c.Settlement.IntervalSeconds = defaultSettlementInterval
	}
	if c.Outbox.BatchSize <= 0 {
		c.Outbox.BatchSize = defaultOutboxBatch
	}
	if c.Outbox.IntervalSeconds <= 0 {
		c.Outbox.IntervalSeconds = defaultOutboxInterval
	}
}
