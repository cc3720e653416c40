// Package config loads socialdb settings from config.yaml, SOCIALDB_*
// environment variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/socialdb/internal/paths"
	"github.com/mesh-intelligence/socialdb/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "SOCIALDB"
)

// Config keys.
const (
	KeyBackend     = "backend"
	KeyHTTPAddr    = "http.addr"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
	KeyMemberTypes = "member_types"
)

// Defaults applied when neither the file nor the environment sets a key.
const (
	DefaultBackend   = types.BackendMemory
	DefaultHTTPAddr  = ":8000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Settings is the resolved configuration of a socialdb process.
type Settings struct {
	Backend     string             `yaml:"backend"`
	HTTP        HTTP               `yaml:"http"`
	Log         Log                `yaml:"log"`
	MemberTypes []types.MemberType `yaml:"member_types"`
}

// HTTP configures the API server.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Backend:     DefaultBackend,
		HTTP:        HTTP{Addr: DefaultHTTPAddr},
		Log:         Log{Level: DefaultLogLevel, Format: DefaultLogFormat},
		MemberTypes: types.DefaultMemberTypes(),
	}
}

// Store returns the part of the settings consumed by socialdb.Open.
func (s Settings) Store() types.Config {
	return types.Config{Backend: s.Backend, MemberTypes: s.MemberTypes}
}

// Validate checks the store configuration and the logging options.
func (s Settings) Validate() error {
	if err := s.Store().Validate(); err != nil {
		return err
	}
	if _, err := parseLevel(s.Log.Level); err != nil {
		return err
	}
	if _, err := s.Log.format(); err != nil {
		return err
	}
	return nil
}

// LoadEnv loads each existing .env file into the process environment.
// Variables already set are kept, so earlier files and the real environment
// win. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads config.yaml from configDir and applies SOCIALDB_* environment
// overrides such as SOCIALDB_BACKEND or SOCIALDB_HTTP_ADDR. A missing
// config.yaml is not an error.
func Load(configDir string) (Settings, error) {
	v := viper.New()
	v.SetDefault(KeyBackend, DefaultBackend)
	v.SetDefault(KeyHTTPAddr, DefaultHTTPAddr)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	s := Settings{
		Backend: v.GetString(KeyBackend),
		HTTP:    HTTP{Addr: v.GetString(KeyHTTPAddr)},
		Log: Log{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}
	if err := v.UnmarshalKey(KeyMemberTypes, &s.MemberTypes); err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", KeyMemberTypes, err)
	}
	if len(s.MemberTypes) == 0 {
		s.MemberTypes = types.DefaultMemberTypes()
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// WriteDefault writes the default settings to config.yaml in configDir,
// creating the directory. It leaves an existing file untouched and reports
// whether it wrote one.
func WriteDefault(configDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	content := append([]byte("# socialdb configuration\n"), data...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
