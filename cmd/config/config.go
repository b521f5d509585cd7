package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v2"
)

const defaultWatchDebounce = 500 * time.Millisecond

// ErrNoConfigFile is returned by FindConfigFile when no file exists.
var ErrNoConfigFile = errors.New("no antom config file (yaml/toml/json) found")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			d, err := time.ParseDuration(fl.Field().String())
			return err == nil && d >= 0
		})
	})
	return validate
}

// LoadConfig loads the first supported config file found in configDir.
func LoadConfig(configDir string) (*AntomConfig, error) {
	if configDir == "" {
		return nil, fmt.Errorf("config directory is required")
	}
	foundFile, err := FindConfigFile(configDir)
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(foundFile)
}

// LoadConfigFile parses configFile according to its extension and validates it.
func LoadConfigFile(configFile string) (*AntomConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg AntomConfig
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %w", configFile, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file %s: %w", configFile, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file %s: %w", configFile, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}

	if err := getValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configFile, err)
	}
	return &cfg, nil
}

// FindConfigFile returns the first supported config file in searchPath.
func FindConfigFile(searchPath string) (string, error) {
	if searchPath == "" {
		return "", fmt.Errorf("search path is required")
	}
	for _, name := range SupportedConfigFiles {
		fullPath := filepath.Join(searchPath, name)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoConfigFile, searchPath)
}

// IsConfigFile reports whether filePath names a supported config file.
func IsConfigFile(filePath string) bool {
	base := filepath.Base(filePath)
	for _, name := range SupportedConfigFiles {
		if base == name {
			return true
		}
	}
	return false
}

// Resolve merges defaults, the config file, the environment (after loading
// .env from dir) and overrides, in increasing order of precedence.
//
// configPath may name a file or a directory; empty means dir. A missing
// config file is not an error unless configPath names a file explicitly.
func Resolve(dir, configPath string, o Overrides) (*Settings, error) {
	if dir == "" {
		dir = "."
	}
	if err := loadDotEnv(dir); err != nil {
		return nil, err
	}

	s := &Settings{
		ServerURL:     DefaultServerURL,
		Timeout:       DefaultTimeout,
		WatchDebounce: defaultWatchDebounce,
	}

	cfg, source, err := loadFrom(dir, configPath)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		if err := s.applyFile(cfg); err != nil {
			return nil, err
		}
		s.Source = source
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}

	if o.ServerURL != nil {
		s.ServerURL = *o.ServerURL
	}
	if o.Timeout != nil {
		s.Timeout = *o.Timeout
	}
	if o.Debug != nil {
		s.Debug = *o.Debug
	}

	s.ServerURL = strings.TrimSuffix(strings.TrimSpace(s.ServerURL), "/")
	if err := getValidator().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

func loadFrom(dir, configPath string) (*AntomConfig, string, error) {
	if configPath != "" {
		info, err := os.Stat(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("config file %s: %w", configPath, err)
		}
		if !info.IsDir() {
			cfg, err := LoadConfigFile(configPath)
			return cfg, configPath, err
		}
		dir = configPath
	}

	found, err := FindConfigFile(dir)
	if errors.Is(err, ErrNoConfigFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadConfigFile(found)
	return cfg, found, err
}

func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	// Existing environment variables win over .env entries.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (s *Settings) applyFile(cfg *AntomConfig) error {
	if cfg.ServerURL != "" {
		s.ServerURL = cfg.ServerURL
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
		s.Timeout = d
	}
	if cfg.Watch.Debounce != "" {
		d, err := time.ParseDuration(cfg.Watch.Debounce)
		if err != nil {
			return fmt.Errorf("invalid watch debounce %q: %w", cfg.Watch.Debounce, err)
		}
		s.WatchDebounce = d
	}
	s.Debug = cfg.Debug
	s.LogFile = cfg.LogFile
	s.SkipLanding = cfg.SkipLanding
	return nil
}

func (s *Settings) applyEnv() error {
	if v, ok := os.LookupEnv(EnvServerURL); ok && v != "" {
		s.ServerURL = v
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		s.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		s.Debug = b
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok && v != "" {
		s.LogFile = v
	}
	return nil
}

// parseTimeout accepts a Go duration ("90s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
