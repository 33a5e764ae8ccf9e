/*
Package config manages the TOML config shared by tagserve and tagfield.
*/
package config

import (
	"path/filepath"
	"time"

	"github.com/bastiangx/tagcomplete/internal/utils"
	"github.com/charmbracelet/log"
)

// AppName names the config directory.
const AppName = "tagcomplete"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Field  FieldConfig  `toml:"field"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig has suggestion server options.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	Limit     int    `toml:"limit"`
	MaxTerm   int    `toml:"max_term"`
	CacheSize int    `toml:"cache_size"`
	// Order is "name" or "uses".
	Order string `toml:"order"`
}

// FieldConfig holds options of the tag field.
type FieldConfig struct {
	Endpoint string `toml:"endpoint"`
	// Transport is "http" or "ipc".
	Transport string `toml:"transport"`
	// ServerPath is the tagserve binary spawned for the ipc transport.
	ServerPath string `toml:"server_path"`
	MinLength  int    `toml:"min_length"`
	AutoFocus  bool   `toml:"auto_focus"`
	TimeoutMS  int    `toml:"timeout_ms"`
}

// Timeout returns TimeoutMS as a duration.
func (f FieldConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}

// StoreConfig holds tag store options. A relative Path is resolved against
// the config directory.
type StoreConfig struct {
	Path string `toml:"path"`
	Seed string `toml:"seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      "127.0.0.1:8411",
			Limit:     15,
			MaxTerm:   60,
			CacheSize: 256,
			Order:     "name",
		},
		Field: FieldConfig{
			Endpoint:   "http://127.0.0.1:8411/_complete/tags",
			Transport:  "http",
			ServerPath: "tagserve",
			MinLength:  0,
			AutoFocus:  false,
			TimeoutMS:  3000,
		},
		Store: StoreConfig{
			Path: "tags.db",
			Seed: "",
		},
	}
}

// GetConfigDir returns the first writable config directory.
func GetConfigDir() (string, error) {
	return utils.WritableConfigDir(AppName)
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [config dir]/tagcomplete/config.toml, created if missing
// 3. Builtin defaults
//
// The returned path is empty when builtin defaults are used.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their
// defaults; a file that fails to decode is salvaged section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(raw, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(raw, "field"); ok {
		extractFieldConfig(section, &config.Field)
	}
	if section, ok := utils.ExtractSection(raw, "store"); ok {
		extractStoreConfig(section, &config.Store)
	}
	config.sanitize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		server.Limit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_term"); ok {
		server.MaxTerm = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
	if val, ok := utils.ExtractString(data, "order"); ok {
		server.Order = val
	}
}

func extractFieldConfig(data map[string]any, field *FieldConfig) {
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		field.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "transport"); ok {
		field.Transport = val
	}
	if val, ok := utils.ExtractString(data, "server_path"); ok {
		field.ServerPath = val
	}
	if val, ok := utils.ExtractInt64(data, "min_length"); ok {
		field.MinLength = val
	}
	if val, ok := utils.ExtractBool(data, "auto_focus"); ok {
		field.AutoFocus = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		field.TimeoutMS = val
	}
}

func extractStoreConfig(data map[string]any, store *StoreConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		store.Path = val
	}
	if val, ok := utils.ExtractString(data, "seed"); ok {
		store.Seed = val
	}
}

// sanitize replaces values no component can work with by their defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Server.Limit <= 0 {
		log.Warnf("Invalid server.limit %d, using %d", c.Server.Limit, def.Server.Limit)
		c.Server.Limit = def.Server.Limit
	}
	if c.Server.MaxTerm < 0 {
		c.Server.MaxTerm = def.Server.MaxTerm
	}
	if c.Server.CacheSize < 0 {
		c.Server.CacheSize = 0
	}
	if c.Server.Order != "name" && c.Server.Order != "uses" {
		log.Warnf("Invalid server.order %q, using %q", c.Server.Order, def.Server.Order)
		c.Server.Order = def.Server.Order
	}
	if c.Field.Transport != "http" && c.Field.Transport != "ipc" {
		log.Warnf("Invalid field.transport %q, using %q", c.Field.Transport, def.Field.Transport)
		c.Field.Transport = def.Field.Transport
	}
	if c.Field.MinLength < 0 {
		c.Field.MinLength = 0
	}
	if c.Field.TimeoutMS <= 0 {
		c.Field.TimeoutMS = def.Field.TimeoutMS
	}
}

// StorePath resolves Store.Path against the directory of configPath.
func (c *Config) StorePath(configPath string) string {
	if configPath == "" {
		return c.Store.Path
	}
	return utils.ResolvePath(filepath.Dir(configPath), c.Store.Path)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes field options at runtime and saves them to file.
func (c *Config) Update(configPath string, minLength *int, autoFocus *bool, endpoint *string) error {
	field := &c.Field
	if minLength != nil {
		field.MinLength = *minLength
	}
	if autoFocus != nil {
		field.AutoFocus = *autoFocus
	}
	if endpoint != nil {
		field.Endpoint = *endpoint
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}
