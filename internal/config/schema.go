package config

// Config is the merged configuration for the tasks tool
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Log level: debug, info, warn or error
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Serve   ServeConfig   `yaml:"serve" mapstructure:"serve"`
}

// StorageConfig selects where the task collection is persisted
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Path    string `yaml:"path" mapstructure:"path"`
	Key     string `yaml:"key" mapstructure:"key"`
}

// SearchConfig tunes the filtered view
type SearchConfig struct {
	MinLength int `yaml:"min_length" mapstructure:"min_length"`
}

// ServeConfig configures the HTTP API
type ServeConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}
