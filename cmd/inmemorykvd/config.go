package main

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cafebazaar/inmemory-keyvalue/internal/protocol"
)

const envPrefix = "INMEMORYKV"

// Config the application's configuration structure
type Config struct {
	ListenPort        int
	Storage           string
	RedisAddress      string
	SweepInterval     time.Duration
	MetricsListenPort int
	LogLevel          string
	Profiling         bool
	MaxArguments      int
	MaxBulkSize       int
}

// LoadConfig loads the config from a file if specified, otherwise from the environment
func LoadConfig(cmd *cobra.Command, envPrefix string) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// Setting defaults for this application
	viper.SetDefault("listenPort", 6380)
	viper.SetDefault("storage", "memory")
	viper.SetDefault("redisAddress", "")
	viper.SetDefault("sweepInterval", 0)
	viper.SetDefault("metricsListenPort", 0)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("profiling", false)
	viper.SetDefault("maxArguments", protocol.DefaultMaxArguments)
	viper.SetDefault("maxBulkSize", protocol.DefaultMaxBulkSize)

	// Read Config from ENV
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	// Read Config from Flags
	err := viper.BindPFlags(cmd.Flags())
	if err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	// Read Config from file
	if configFile, err := cmd.Flags().GetString("config-file"); err == nil && configFile != "" {
		viper.SetConfigFile(configFile)

		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %v", configFile)
		}
	}

	var config Config

	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &config, nil
}
