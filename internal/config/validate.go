package config

import (
	"fmt"

	"driftcast/internal/rtmp"
)

// Validate checks that all configuration values are within acceptable
// ranges, returning an error describing the first failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.RTMP.Validate(); err != nil {
		return fmt.Errorf("rtmp config: %w", err)
	}
	return nil
}

// Validate checks ambient server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HealthPort <= 0 || s.HealthPort > 65535 {
		return fmt.Errorf("health_port must be between 1 and 65535, got %d", s.HealthPort)
	}
	return nil
}

// Validate checks RTMP listener and negotiation configuration values.
func (r *RTMPConfig) Validate() error {
	if r.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if r.WindowAckSize == 0 {
		return fmt.Errorf("window_ack_size must be positive")
	}
	if r.PeerBandwidth == 0 {
		return fmt.Errorf("peer_bandwidth must be positive")
	}
	if r.OutboundChunkSize == 0 || r.OutboundChunkSize > rtmp.MaxSetChunkSize {
		return fmt.Errorf("outbound_chunk_size must be between 1 and %d, got %d", rtmp.MaxSetChunkSize, r.OutboundChunkSize)
	}
	return nil
}
