package config

import "time"

// Config file names, searched in this order.
var SupportedConfigFiles = []string{
	"antom.yaml",
	"antom.yml",
	"antom.toml",
	"antom.json",
}

// Environment variables that override file settings.
const (
	EnvServerURL = "ANTOM_SERVER_URL"
	EnvTimeout   = "ANTOM_TIMEOUT"
	EnvDebug     = "ANTOM_DEBUG"
	EnvLogFile   = "ANTOM_LOG_FILE"
)

const (
	DefaultServerURL = "http://127.0.0.1:8000"
	DefaultTimeout   = 60 * time.Second
)

// AntomConfig is the on-disk configuration.
type AntomConfig struct {
	ServerURL   string      `yaml:"server_url,omitempty" toml:"server_url,omitempty" json:"server_url,omitempty" validate:"omitempty,http_url"`
	Timeout     string      `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty" validate:"omitempty,duration"`
	Debug       bool        `yaml:"debug,omitempty" toml:"debug,omitempty" json:"debug,omitempty"`
	LogFile     string      `yaml:"log_file,omitempty" toml:"log_file,omitempty" json:"log_file,omitempty"`
	SkipLanding bool        `yaml:"skip_landing,omitempty" toml:"skip_landing,omitempty" json:"skip_landing,omitempty"`
	Watch       WatchConfig `yaml:"watch,omitempty" toml:"watch,omitempty" json:"watch,omitempty"`
}

// WatchConfig tunes the directory watcher.
type WatchConfig struct {
	// Debounce is how long a file must be quiet before it is uploaded.
	Debounce string `yaml:"debounce,omitempty" toml:"debounce,omitempty" json:"debounce,omitempty" validate:"omitempty,duration"`
}

// Overrides carries command-line values. Nil fields were not set.
type Overrides struct {
	ServerURL *string
	Timeout   *time.Duration
	Debug     *bool
}

// Settings is the effective configuration after merging every source.
type Settings struct {
	ServerURL     string        `validate:"required,http_url"`
	Timeout       time.Duration `validate:"gte=0"`
	Debug         bool
	LogFile       string
	SkipLanding   bool
	WatchDebounce time.Duration `validate:"gte=0"`
	// Source is the config file that was read, empty when none was found.
	Source string
}
