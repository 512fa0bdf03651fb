// Package ingest implements the RTMP connection state machine: dispatching
// assembled messages to the control-message handler or the AMF0 command
// handler, and tracking the per-connection app/stream-name/publishing
// state that sits above the framing layer in package rtmp.
package ingest

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"driftcast/internal/router"
	"driftcast/internal/rtmp"
)

// Session is a connection's service-level state: the framing layer
// (*rtmp.ConnectionState) plus the application name, stream name, and next
// stream id a publish/play client negotiates through commands (§4.6).
// Mirrors the framing/service split in package rtmp, keeping ConnectionState
// a faithful match for the framing-only data model of §3.
type Session struct {
	*rtmp.ConnectionState

	id           string
	app          string
	streamName   string
	nextStreamID uint32

	// Parameters HandleConnect negotiates with the peer (§4.6). Defaulted to
	// the literal values in the connect scenario; a server overrides them
	// with its configured values via SetConnectParams before traffic flows.
	windowAckSize     uint32
	peerBandwidth     uint32
	outboundChunkSize uint32

	router router.ChunkRouter
	log    logrus.FieldLogger
}

// NewSession wraps conn with a fresh connection-state-machine session. Every
// session gets its own connection id for log correlation (§ ambient stack);
// rt is the media fan-out boundary (§9) and is never inspected, only called.
func NewSession(conn io.ReadWriter, rt router.ChunkRouter, log logrus.FieldLogger) *Session {
	id := uuid.NewString()
	connLog := log.WithField("conn_id", id)
	return &Session{
		ConnectionState:   rtmp.NewConnectionState(conn, connLog),
		id:                id,
		nextStreamID:      1,
		windowAckSize:     5_000_000,
		peerBandwidth:     5_000_000,
		outboundChunkSize: 5000,
		router:            rt,
		log:               connLog,
	}
}

// SetConnectParams overrides the window-ack-size, peer-bandwidth, and
// outbound-chunk-size values HandleConnect negotiates with the peer. Called
// once by the server right after NewSession, before any traffic is read.
func (s *Session) SetConnectParams(windowAckSize, peerBandwidth, outboundChunkSize uint32) {
	s.windowAckSize = windowAckSize
	s.peerBandwidth = peerBandwidth
	s.outboundChunkSize = outboundChunkSize
}

// ID returns the session's connection id, used for log correlation.
func (s *Session) ID() string { return s.id }

// App returns the app name the client sent on connect.
func (s *Session) App() string { return s.app }

// SetApp records the app name from a connect command.
func (s *Session) SetApp(app string) { s.app = app }

// StreamName returns the stream name from the client's publish command.
func (s *Session) StreamName() string { return s.streamName }

// SetStreamName records the stream name from a publish command.
func (s *Session) SetStreamName(name string) { s.streamName = name }

// PublishMedia hands an assembled audio/video/data message to the
// configured router, if this session has a stream name (set by publish or
// play). Sessions with no stream name never reach the router.
func (s *Session) PublishMedia(typeID byte, timestamp uint32, payload []byte) {
	if s.streamName == "" {
		return
	}
	s.router.Publish(s.streamName, router.Message{
		StreamName: s.streamName,
		TypeID:     typeID,
		Timestamp:  timestamp,
		Payload:    payload,
	})
}
