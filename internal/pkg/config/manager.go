package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the directory under the user's home holding the config file.
	DefaultConfigDir = ".memix"
	// DefaultConfigFileExt is the default config file extension.
	DefaultConfigFileExt = "yaml"
	// DefaultEnvFile is the dotenv file read from the working directory.
	DefaultEnvFile = ".env"
)

// envBindings lists every configuration key with the environment variables
// that may supply it, highest priority first.
var envBindings = map[string][]string{
	"provider.name":            {"MEMIX_PROVIDER_NAME"},
	"provider.api_key":         {"MEMIX_PROVIDER_API_KEY", "GROQ_KEY"},
	"provider.model":           {"MEMIX_PROVIDER_MODEL"},
	"provider.endpoint":        {"MEMIX_PROVIDER_ENDPOINT"},
	"provider.profile":         {"MEMIX_PROVIDER_PROFILE"},
	"provider.temperature":     {"MEMIX_PROVIDER_TEMPERATURE"},
	"provider.max_tokens":      {"MEMIX_PROVIDER_MAX_TOKENS"},
	"provider.timeout_seconds": {"MEMIX_PROVIDER_TIMEOUT_SECONDS"},
	"prompt.system":            {"MEMIX_PROMPT_SYSTEM"},
	"prompt.user_template":     {"MEMIX_PROMPT_USER_TEMPLATE"},
	"ui.color_enabled":         {"MEMIX_UI_COLOR_ENABLED"},
}

// ViperManager loads and edits the memix configuration using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
	envFile    string
	overrides  map[string]bool
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.memix/config.yaml).
func NewManager(configPath string) (*ViperManager, error) {
	v := viper.New()

	v.SetConfigType(DefaultConfigFileExt)

	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, DefaultConfigDir, "config.yaml")
	}

	v.SetConfigFile(configPath)

	v.SetEnvPrefix("MEMIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults first; nested keys only bind to env once they are known.
	setDefaults(v)
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
		envFile:    DefaultEnvFile,
		overrides:  make(map[string]bool),
	}, nil
}

func bindEnvVars(v *viper.Viper) {
	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", "groq")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.profile", "memix")
	v.SetDefault("provider.temperature", 0.0)
	v.SetDefault("provider.max_tokens", 0)
	v.SetDefault("provider.timeout_seconds", 60)

	v.SetDefault("prompt.system", "")
	v.SetDefault("prompt.user_template", "")

	v.SetDefault("ui.color_enabled", true)
}

// KnownKeys returns every supported configuration key in sorted order.
func KnownKeys() []string {
	keys := make([]string, 0, len(envBindings))
	for key := range envBindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// SetEnvFile changes the dotenv file consulted by Load. An empty path disables it.
func (m *ViperManager) SetEnvFile(path string) {
	m.envFile = path
}

// Load loads the configuration from flags, environment, the dotenv file,
// the config file and defaults.
// Priority: flags > env > .env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := m.readConfigFile(); err != nil {
		return nil, err
	}

	dotenv, err := m.readEnvFile()
	if err != nil {
		return nil, err
	}

	src := m.v
	if len(dotenv) > 0 {
		// Layer dotenv values in a scratch instance so they never reach the config file.
		src = viper.New()
		if err := src.MergeConfigMap(m.v.AllSettings()); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
		for key, value := range dotenv {
			src.Set(key, value)
		}
	}

	var cfg Config
	if err := src.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (m *ViperManager) readConfigFile() error {
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// readEnvFile returns the config values supplied by the dotenv file for keys
// that neither a flag override nor the process environment already set.
func (m *ViperManager) readEnvFile() (map[string]string, error) {
	if m.envFile == "" {
		return nil, nil
	}
	if _, err := os.Stat(m.envFile); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", m.envFile, err)
	}

	d := viper.New()
	d.SetConfigFile(m.envFile)
	d.SetConfigType("env")
	if err := d.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.envFile, err)
	}

	values := make(map[string]string)
	for key, names := range envBindings {
		if m.overrides[key] || envSet(names) {
			continue
		}
		for _, name := range names {
			if value := d.GetString(strings.ToLower(name)); value != "" {
				values[key] = value
				break
			}
		}
	}
	return values, nil
}

func envSet(names []string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 for security. Environment values and
// flag overrides are not written.
func (m *ViperManager) Init() error {
	if _, err := os.Stat(m.configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	fv := viper.New()
	fv.SetConfigType(DefaultConfigFileExt)
	setDefaults(fv)

	return m.write(fv)
}

// Set sets a configuration value by key and persists it.
// Supports nested keys using dot notation (e.g., "provider.name").
// Only the file's own contents are written back: values coming from the
// environment, the dotenv file or SetOverride never reach the file.
func (m *ViperManager) Set(key string, value string) error {
	if _, ok := envBindings[key]; !ok {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(KnownKeys(), ", "))
	}

	convertedValue, err := convertValue(key, value)
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}

	fv := viper.New()
	fv.SetConfigFile(m.configPath)
	fv.SetConfigType(DefaultConfigFileExt)
	if err := fv.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fv.Set(key, convertedValue)

	return m.write(fv)
}

// write stores the settings of fv at the config path with 0600 permissions.
func (m *ViperManager) write(fv *viper.Viper) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := fv.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// convertValue parses value as the type of the Config field that key names,
// so a float key accepts "0.7" even when the file holds a whole number.
func convertValue(key, value string) (interface{}, error) {
	switch keyKind(key) {
	case reflect.Bool:
		return strconv.ParseBool(value)
	case reflect.Int:
		return strconv.Atoi(value)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(value, 64)
	default:
		return value, nil
	}
}

// keyKind follows the mapstructure tags of Config along a dotted key.
func keyKind(key string) reflect.Kind {
	t := reflect.TypeOf(Config{})
	for _, part := range strings.Split(key, ".") {
		if t.Kind() != reflect.Struct {
			return reflect.Invalid
		}
		field, ok := fieldByTag(t, part)
		if !ok {
			return reflect.Invalid
		}
		t = field.Type
	}
	return t.Kind()
}

func fieldByTag(t reflect.Type, tag string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Tag.Get("mapstructure") == tag {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.readConfigFile(); err != nil {
		return "", err
	}

	value := m.v.Get(key)
	if value == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", value), nil
}

// List returns all configuration values as a map.
func (m *ViperManager) List() map[string]interface{} {
	_ = m.readConfigFile()

	return m.v.AllSettings()
}

// SetOverride sets a temporary override for a configuration key.
// Used for command-line flags; overrides are never persisted by Set.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.overrides[key] = true
	m.v.Set(key, value)
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}
