// Package config defines the ingest server's configuration structure. It
// uses strict YAML decoding and explicit defaults, the same way the
// teacher's config package does.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the complete server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	RTMP   RTMPConfig   `yaml:"rtmp"`
}

// ServerConfig defines ambient HTTP server settings (health checks only;
// the control/viewer HTTP surface is out of scope, see SPEC_FULL.md).
type ServerConfig struct {
	HealthPort int `yaml:"health_port"` // Port for the /healthz endpoint
}

// RTMPConfig defines the ingest listener and the negotiated connection
// parameters sent to every client on connect (§4.6, §6).
type RTMPConfig struct {
	ListenAddr        string `yaml:"listen_addr"`         // TCP address the RTMP listener binds
	WindowAckSize     uint32 `yaml:"window_ack_size"`     // WindowAcknowledgementSize sent on connect
	PeerBandwidth     uint32 `yaml:"peer_bandwidth"`      // SetPeerBandwidth sent on connect
	OutboundChunkSize uint32 `yaml:"outbound_chunk_size"` // Chunk size this server uses to frame outbound messages
}

// Load reads configuration from a YAML file. Returns an error if the file
// cannot be read or decoded, or if it contains unknown fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = 8080
	}
	if c.RTMP.ListenAddr == "" {
		c.RTMP.ListenAddr = "127.0.0.1:1935" // §6 default endpoint
	}
	if c.RTMP.WindowAckSize == 0 {
		c.RTMP.WindowAckSize = 5_000_000
	}
	if c.RTMP.PeerBandwidth == 0 {
		c.RTMP.PeerBandwidth = 5_000_000
	}
	if c.RTMP.OutboundChunkSize == 0 {
		c.RTMP.OutboundChunkSize = 5000 // §4.6 connect-response default
	}
}
