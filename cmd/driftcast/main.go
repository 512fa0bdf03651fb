// Command driftcast runs the RTMP ingest server: it loads configuration,
// starts the health and RTMP listeners, and waits for a termination signal
// to shut down cleanly.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"driftcast/internal/config"
	"driftcast/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/driftcast.example.yaml", "Path to configuration file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	ctx := context.Background()
	srv := server.New(cfg, log)
	shutdownHandler := server.NewShutdownHandler(srv, ctx, log)

	go func() {
		if err := srv.Start(cfg); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
			os.Exit(1)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.WithError(err).Fatal("shutdown error")
		os.Exit(1)
	}

	log.Info("server shut down cleanly")
}
