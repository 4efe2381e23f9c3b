package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-redis/redis"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cafebazaar/inmemory-keyvalue/internal/core"
	"github.com/cafebazaar/inmemory-keyvalue/internal/engine"
	"github.com/cafebazaar/inmemory-keyvalue/internal/parser"
	"github.com/cafebazaar/inmemory-keyvalue/internal/protocol"
	"github.com/cafebazaar/inmemory-keyvalue/internal/storage/memory"
	redisStorage "github.com/cafebazaar/inmemory-keyvalue/internal/storage/redis"
	redisTransport "github.com/cafebazaar/inmemory-keyvalue/internal/transport/redis"
	"github.com/cafebazaar/inmemory-keyvalue/pkg/keyvaluestore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start Server",
	Run:   serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("listen-port", 6380, "Port to accept redis connections on")
	serveCmd.Flags().String("storage", "memory", "Storage backend: memory or redis")
	serveCmd.Flags().String("redis-address", "", "Address of the redis server used by the redis storage")
	serveCmd.Flags().Duration("sweep-interval", 0, "Interval between sweeps of expired keys, 0 disables sweeping")
	serveCmd.Flags().Int("metrics-listen-port", 0, "Port to expose Prometheus metrics on, 0 disables it")
	serveCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().Bool("profiling", false, "Write a CPU profile to the working directory")
	serveCmd.Flags().Int("max-arguments", protocol.DefaultMaxArguments, "Maximum number of arguments in one request")
	serveCmd.Flags().Int("max-bulk-size", protocol.DefaultMaxBulkSize, "Maximum size in bytes of one request argument")

	bindFlag("listenPort", "listen-port")
	bindFlag("storage", "storage")
	bindFlag("redisAddress", "redis-address")
	bindFlag("sweepInterval", "sweep-interval")
	bindFlag("metricsListenPort", "metrics-listen-port")
	bindFlag("logLevel", "log-level")
	bindFlag("profiling", "profiling")
	bindFlag("maxArguments", "max-arguments")
	bindFlag("maxBulkSize", "max-bulk-size")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flag)); err != nil {
		panicWithError(err, "failed to bind flag %v", flag)
	}
}

func serve(cmd *cobra.Command, args []string) {
	config := loadConfigOrPanic(cmd)
	configureLoggingOrPanic(config)

	if config.Profiling {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	protocol.SetLimits(config.MaxArguments, config.MaxBulkSize)

	storage := configureStorageOrPanic(config)
	svc := getService(storage, config)

	server := redisTransport.New(svc, config.ListenPort)
	startServerOrPanic(server)
	log.WithField("address", server.Addr()).Info("accepting redis connections")

	metricsServer := startMetricsServer(config)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if metricsServer != nil {
		if err := metricsServer.Close(); err != nil {
			log.WithError(err).Error("failed to close metrics server")
		}
	}

	shutdownServerOrPanic(server)
	if err := svc.Close(); err != nil {
		panicWithError(err, "failed to close service")
	}
}

func loadConfigOrPanic(cmd *cobra.Command) *Config {
	config, err := LoadConfig(cmd, envPrefix)
	if err != nil {
		log.WithError(err).Panic("Failed to load configurations")
	}
	return config
}

func configureLoggingOrPanic(config *Config) {
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		panicWithError(err, "invalid log level: %v", config.LogLevel)
	}

	log.SetLevel(level)
}

func configureStorageOrPanic(config *Config) keyvaluestore.Storage {
	switch config.Storage {
	case "memory":
		return memory.New()

	case "redis":
		if config.RedisAddress == "" {
			log.Panic("redis storage requires redisAddress")
		}
		return connectToRedisOrPanic(config.RedisAddress)

	default:
		log.Panicf("unknown storage: %v", config.Storage)
		return nil
	}
}

func connectToRedisOrPanic(host string) keyvaluestore.Storage {
	client := redis.NewClient(&redis.Options{Addr: host})
	if err := client.Ping().Err(); err != nil {
		panicWithError(err, "failed to connect to redis at %v", host)
	}

	return redisStorage.New(client)
}

func getService(storage keyvaluestore.Storage, config *Config) keyvaluestore.Service {
	var options []engine.Option
	if config.SweepInterval > 0 {
		options = append(options, engine.WithSweepInterval(config.SweepInterval))
	}

	return core.New(parser.New(), engine.New(storage, options...))
}

func startMetricsServer(config *Config) *http.Server {
	if config.MetricsListenPort == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.MetricsListenPort),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()

	return server
}

func startServerOrPanic(server keyvaluestore.Server) {
	err := server.Start()
	if err != nil {
		panicWithError(err, "failed to start server")
	}
}

func shutdownServerOrPanic(server keyvaluestore.Server) {
	if err := server.Close(); err != nil {
		panicWithError(err, "failed to close server")
	}
}

func panicWithError(err error, format string, args ...interface{}) {
	log.WithError(err).Panicf(format, args...)
}
