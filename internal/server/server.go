// Package server wires the health HTTP endpoint and the RTMP ingest
// listener into one process lifecycle: start both, shut both down
// together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"driftcast/internal/config"
	"driftcast/internal/ingest"
	"driftcast/internal/router"
	"driftcast/internal/svc/health"
)

// Server wraps the ambient HTTP server (health checks) and the RTMP ingest
// server, and owns the shutdown sequence for both.
type Server struct {
	httpServer *http.Server
	healthSvc  *health.Service
	rtmpServer *ingest.Server
	log        logrus.FieldLogger
}

// New creates a server instance with the given configuration. The server is
// not started until Start is called.
func New(cfg *config.Config, log logrus.FieldLogger) *Server {
	mux := http.NewServeMux()

	healthSvc := health.New()
	healthSvc.RegisterRoutes(mux)

	rtmpServer := ingest.NewServer(ingest.Config{
		OutboundChunkSize: cfg.RTMP.OutboundChunkSize,
		WindowAckSize:     cfg.RTMP.WindowAckSize,
		PeerBandwidth:     cfg.RTMP.PeerBandwidth,
	}, router.NopRouter{}, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HealthPort),
		Handler: mux,
	}

	return &Server{
		httpServer: httpServer,
		healthSvc:  healthSvc,
		rtmpServer: rtmpServer,
		log:        log,
	}
}

// Start begins serving health checks and RTMP connections. This method
// blocks until the HTTP server is stopped or encounters an error.
func (s *Server) Start(cfg *config.Config) error {
	if err := s.rtmpServer.Listen(cfg.RTMP.ListenAddr); err != nil {
		return fmt.Errorf("rtmp server listen: %w", err)
	}
	go func() {
		if err := s.rtmpServer.Accept(); err != nil {
			s.log.WithError(err).Info("rtmp accept loop stopped")
		}
	}()

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server with the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ShutdownWithTimeout stops the server with a fixed 5-second timeout,
// closing the RTMP listener first so no new connections arrive mid-shutdown.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.rtmpServer != nil {
		if err := s.rtmpServer.Close(); err != nil {
			s.log.WithError(err).Warn("rtmp server close failed")
		}
	}

	return s.Shutdown(ctx)
}
