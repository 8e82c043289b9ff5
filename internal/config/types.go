package config

// Config is the top-level configuration carrier.
type Config struct {
	App        AppConfig        `toml:"app"`
	Database   DatabaseConfig   `toml:"database"`
	Settlement SettlementConfig `toml:"settlement"`
	Outbox     OutboxConfig     `toml:"outbox"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// SettlementConfig controls the periodic settlement sweep.
type SettlementConfig struct {
	BatchSize       int  `toml:"batch_size"`
	IntervalSeconds int  `toml:"interval_seconds"`
	SeedDemoData    bool `toml:"seed_demo_data"`
}

// OutboxConfig controls the notification drain sweep.
type OutboxConfig struct {
	BatchSize       int `toml:"batch_size"`
	IntervalSeconds int `toml:"interval_seconds"`
}
