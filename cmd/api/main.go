package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/picontrol/eversolo2hub/internal/adapter/actor"
	"github.com/picontrol/eversolo2hub/internal/adapter/lirc"
	"github.com/picontrol/eversolo2hub/internal/adapter/mdns"
	"github.com/picontrol/eversolo2hub/internal/adapter/storage"
	"github.com/picontrol/eversolo2hub/internal/assets"
	"github.com/picontrol/eversolo2hub/internal/config"
	"github.com/picontrol/eversolo2hub/internal/core/actor"
	"github.com/picontrol/eversolo2hub/internal/core/port"
	"github.com/picontrol/eversolo2hub/internal/core/service"
	"github.com/picontrol/eversolo2hub/internal/server"
	"github.com/picontrol/eversolo2hub/internal/util/actorutil"
	"github.com/picontrol/eversolo2hub/pkg/eversolo"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// shared device plumbing
	store, err := storage.CreateSQLiteDeviceStore(cfg.Discovery.CacheFile, logger)
	if err != nil {
		panic(err)
	}
	icons := assets.CreateIconStore(cfg.Icons.Dir, logger)
	clientFactory := controlClientFactory(cfg, logger)
	registryProv := registryProvider(store, infraredSender(cfg, logger), clientFactory, logger)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg,
			discoveryActorProvider(cfg, clientFactory, logger),
			commandActorProvider(cfg, logger),
			mqttActorProvider(cfg, logger),
			registryProv, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	// the HTTP layer reads device snapshots through the master actor
	source := adactor.NewActorDiscoverySource(ctx, pid, 4*time.Second)
	registry := registryProv(source)

	server := server.NewServer(*cfg, ctx, pid, registry, icons)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => EVERSOLO2HUB_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("EVERSOLO2HUB_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("eversolo2hub")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check bounds
	if cfg.Device.CommandTimeoutMillis > cfg.Device.ConnectTimeoutMillis {
		return nil, errors.New("config param device.command_timeout_millis should be <= device.connect_timeout_millis")
	}
	if cfg.Discovery.CacheRefreshMillis != 0 && cfg.Discovery.CacheRefreshMillis < 10000 {
		return nil, errors.New("config param discovery.cache_refresh_millis should be 0 or >= 10000")
	}

	if cfg.MQTT.Enable {
		// check and fix base topic
		baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
		if err != nil {
			return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
		}
		cfg.MQTT.BaseTopic = baseTopic
	}

	return &cfg, nil
}

func controlClientFactory(cfg *config.Config, logger *zap.Logger) service.ControlClientFactory {
	connectTimeout := time.Duration(cfg.Device.ConnectTimeoutMillis) * time.Millisecond
	commandTimeout := time.Duration(cfg.Device.CommandTimeoutMillis) * time.Millisecond
	return func(address string) eversolo.ControlClient {
		return eversolo.CreateControlClient(address, cfg.Device.Port, cfg.Device.ClientName,
			cfg.Device.ClientUUID, connectTimeout, commandTimeout, logger)
	}
}

// infraredSender wires lirc when the daemon answers on the configured socket.
// Commands fall back to their HTTP paths when it does not.
func infraredSender(cfg *config.Config, logger *zap.Logger) port.InfraredSender {
	if cfg.Lirc.Socket == "" {
		return nil
	}
	commandTimeout := time.Duration(cfg.Device.CommandTimeoutMillis) * time.Millisecond
	sender := lirc.CreateLircSender(cfg.Lirc.Socket, cfg.Lirc.Remote, commandTimeout, logger)
	if err := sender.Probe(); err != nil {
		logger.Warn("lircd not reachable, infrared disabled", zap.String("socket", cfg.Lirc.Socket), zap.Error(err))
		return nil
	}
	return sender
}

func registryProvider(store port.DeviceStore, infrared port.InfraredSender,
	clientFactory service.ControlClientFactory, logger *zap.Logger) actor.RegistryProvider {
	return func(source port.DiscoverySource) *service.DeviceRegistry {
		return service.NewDeviceRegistry(source, store, infrared, clientFactory, logger)
	}
}

func discoveryActorProvider(cfg *config.Config, clientFactory service.ControlClientFactory,
	logger *zap.Logger) actor.DiscoveryActorProvider {
	browser := mdns.CreateZeroconfBrowser(cfg.Discovery.Service, cfg.Discovery.Domain, logger)
	connectTimeout := time.Duration(cfg.Device.ConnectTimeoutMillis) * time.Millisecond
	return func(eventStream *eventstream.EventStream) *adactor.DiscoveryActor {
		return adactor.NewDiscoveryActor(browser, clientFactory, connectTimeout, eventStream, logger)
	}
}

func commandActorProvider(cfg *config.Config, logger *zap.Logger) actor.CommandActorProvider {
	commandTimeout := time.Duration(cfg.Device.CommandTimeoutMillis) * time.Millisecond
	return func(registry *service.DeviceRegistry) *adactor.CommandActor {
		return adactor.NewCommandActor(registry, commandTimeout, logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(eventStream *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, eventStream, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("device.port", 9529)
	viper.SetDefault("device.client_name", "PiControlHub")
	viper.SetDefault("device.client_uuid", "f6c4ad46-f0d3-11ee-a951-0242ac120002")
	viper.SetDefault("device.connect_timeout_millis", 10000)
	viper.SetDefault("device.command_timeout_millis", 5000)
	viper.SetDefault("discovery.service", "_adb._tcp")
	viper.SetDefault("discovery.domain", "local.")
	viper.SetDefault("discovery.cache_file", "eversolo.cache")
	viper.SetDefault("discovery.cache_refresh_millis", 300000)
	viper.SetDefault("lirc.socket", "/var/run/lirc/lircd")
	viper.SetDefault("lirc.remote", "eversolo-dmpa6")
	viper.SetDefault("mqtt.enable", false)
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.base_topic", "eversolo2hub")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
