package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/binpack/internal/application"
	"github.com/eugenenazirov/binpack/internal/config"
	"github.com/eugenenazirov/binpack/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("binpack", "Bin packer - packs sized items into the fewest fixed-capacity bins")

	serveCmd := kingpinApp.Command("serve", "Run the packing HTTP service").Default()
	configFile := serveCmd.Flag("config", "Path to YAML configuration file").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	logLevel := serveCmd.Flag("log-level", "Log level (debug, info, warn, error)").String()
	var capacitySet, packCapacitySet bool
	capacityFlag := serveCmd.Flag("capacity", "Default bin capacity").IsSetByUser(&capacitySet).Int()
	strategyFlag := serveCmd.Flag("strategy", "Default packing strategy (first-fit, first-fit-decreasing)").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	packCmd := kingpinApp.Command("pack", "Pack items from a YAML or JSON file and print the bins")
	packFile := packCmd.Arg("file", "Item list; '-' reads standard input").Required().String()
	packCapacity := packCmd.Flag("capacity", "Bin capacity (overrides the file)").IsSetByUser(&packCapacitySet).Int()
	packStrategy := packCmd.Flag("strategy", "Packing strategy (overrides the file)").String()
	packInput := packCmd.Flag("input-format", "Input format; detected from the file extension when empty").Enum("yaml", "yml", "json")
	packOutput := packCmd.Flag("format", "Output format").Default("yaml").Enum("yaml", "json")

	switch kingpin.MustParse(kingpinApp.Parse(os.Args[1:])) {
	case packCmd.FullCommand():
		opts := packOptions{
			Path:         *packFile,
			Strategy:     *packStrategy,
			InputFormat:  *packInput,
			OutputFormat: *packOutput,
		}
		if packCapacitySet {
			opts.Capacity = packCapacity
		}
		if err := runPack(os.Stdin, os.Stdout, opts); err != nil {
			fmt.Fprintf(os.Stderr, "binpack: %v\n", err)
			os.Exit(1)
		}
	default:
		overrides := &config.CLIOverrides{
			ConfigFile: *configFile,
		}

		if *port != "" {
			overrides.Port = port
		}

		if *logLevel != "" {
			overrides.LogLevel = logLevel
		}

		if capacitySet {
			overrides.BinCapacity = capacityFlag
		}

		if *strategyFlag != "" {
			overrides.Strategy = strategyFlag
		}

		if *rateLimitRPSFlag >= 0 {
			overrides.RateLimitRPS = rateLimitRPSFlag
		}

		if *rateLimitBurstFlag >= 0 {
			overrides.RateLimitBurst = rateLimitBurstFlag
		}

		serve(overrides)
	}
}

func serve(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	logger.Info("packing defaults",
		zap.Int("capacity", cfg.BinCapacity),
		zap.String("strategy", string(cfg.Strategy)),
		zap.Int("max_items", cfg.MaxItems),
	)

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
