package config

import (
	"bytes"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Options struct {
	AllowedIPAddresses []string `mapstructure:"allowed_ip_addresses"`
	EnableHealth       bool     `mapstructure:"enable_health"`
	EnableStats        bool     `mapstructure:"enable_stats"`
}

type Config struct {
	Debug       bool
	Port        int
	DBPath      string
	DBChunkSize int

	// SecretKey is the single shared site password. Empty disables the
	// password feature entirely: every media request is allowed through.
	SecretKey string `mapstructure:"secret_key"`

	// SigningKey keys the HMAC binding of share records. Falls back to
	// SecretKey when unset so a minimal config still produces stable
	// signatures across restarts.
	SigningKey string `mapstructure:"signing_key"`

	BurnGraceSeconds int `mapstructure:"burn_grace_seconds"`

	AllowedHeaders []string `mapstructure:"allowed_headers"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Options        *Options
}

func DefaultConfig() *Config {
	return &Config{
		Port:             DefaultPort,
		DBPath:           DefaultDBPath,
		DBChunkSize:      DefaultChunkSize,
		BurnGraceSeconds: DefaultBurnGraceSeconds,
		Options:          &Options{},
	}
}

func load(content string, isPath bool) (*Config, error) {
	config := &Config{}

	defaultConfig := DefaultConfig()

	viper.SetDefault("options", defaultConfig.Options)
	viper.SetDefault("port", defaultConfig.Port)
	viper.SetDefault("dbPath", defaultConfig.DBPath)
	viper.SetDefault("dbChunkSize", defaultConfig.DBChunkSize)
	viper.SetDefault("burn_grace_seconds", defaultConfig.BurnGraceSeconds)
	viper.SetEnvPrefix("cloudimgs")
	viper.AutomaticEnv()

	var err error

	if isPath {
		viper.SetConfigFile(content)
		err = viper.ReadInConfig()
		if err != nil {
			return nil, err
		}
	} else {
		viper.SetConfigType("json")
		err = viper.ReadConfig(bytes.NewBuffer([]byte(content)))
		if err != nil {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}

	if config.SigningKey == "" {
		config.SigningKey = config.SecretKey
	}

	return config, nil
}

// Load reads the config file at path. A .env file next to the binary is
// loaded first so local development can override env-sourced keys.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	return load(path, true)
}

// LoadFromString parses config from a raw JSON document.
func LoadFromString(content string) (*Config, error) {
	return load(content, false)
}
