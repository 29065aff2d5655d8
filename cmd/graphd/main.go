// Command graphd runs the graph server: a line-oriented TCP protocol
// in front of a shared, thread-safe weighted directed graph, plus an
// optional side HTTP listener for /healthz and /metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okdaichi/graphd/internal/engine"
	"github.com/okdaichi/graphd/internal/server"
	"github.com/okdaichi/graphd/internal/version"
)

func main() {
	var (
		configFile  = flag.String("config", "configs/config.yaml", "path to config file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting graphd", "version", version.Version(), "addr", cfg.ServerConfig.ListenAddr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eng := engine.New()
	srv := server.New(eng, &cfg.ServerConfig, logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("server error", "error", err)
		}
	}()

	logger.Info("graphd started successfully")

	<-ctx.Done()
	cancel()

	logger.Info("shutting down graphd")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}

	logger.Info("graphd stopped")
}

// config is the fully-resolved, in-process configuration built from
// the decoded YAML file plus defaults.
type config struct {
	ServerConfig server.Config
}

func loadConfig(filename string) (*config, error) {
	type yamlConfig struct {
		Server struct {
			Address     string `yaml:"address"`
			IdleTimeout string `yaml:"idle_timeout"`
			MetricsAddr string `yaml:"metrics_addr"`
		} `yaml:"server"`
	}

	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file is a legal way to run graphd with every
			// default (listen on :50000, 30s idle timeout, no metrics).
			return &config{}, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var ymlConfig yamlConfig
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&ymlConfig); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	var idleTimeout time.Duration
	if ymlConfig.Server.IdleTimeout != "" {
		idleTimeout, err = time.ParseDuration(ymlConfig.Server.IdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid idle_timeout %q: %w", ymlConfig.Server.IdleTimeout, err)
		}
	}

	return &config{
		ServerConfig: server.Config{
			ListenAddr:  ymlConfig.Server.Address,
			IdleTimeout: idleTimeout,
			MetricsAddr: ymlConfig.Server.MetricsAddr,
		},
	}, nil
}
