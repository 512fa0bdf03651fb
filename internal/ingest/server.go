package ingest

import (
	"io"
	"net"

	"github.com/sirupsen/logrus"

	"driftcast/internal/router"
	"driftcast/internal/rtmp"
)

// Server accepts RTMP connections and drives each one through the
// handshake, chunk reassembly, and message dispatch (§2.5, §4.4). Scaling
// is across connections: each accepted connection gets its own goroutine
// and its own Session, with no state shared between them (§5).
type Server struct {
	listener          net.Listener
	router            router.ChunkRouter
	log               logrus.FieldLogger
	outboundChunkSize uint32
	windowAckSize     uint32
	peerBandwidth     uint32
}

// Config carries the negotiated parameters every new connection starts
// with, sourced from internal/config.
type Config struct {
	OutboundChunkSize uint32
	WindowAckSize     uint32
	PeerBandwidth     uint32
}

// NewServer creates an RTMP server. rt receives every publishing
// connection's media messages (§9); log is the base logger each
// connection's FieldLogger is derived from.
func NewServer(cfg Config, rt router.ChunkRouter, log logrus.FieldLogger) *Server {
	if rt == nil {
		rt = router.NopRouter{}
	}
	return &Server{
		router:            rt,
		log:               log,
		outboundChunkSize: cfg.OutboundChunkSize,
		windowAckSize:     cfg.WindowAckSize,
		peerBandwidth:     cfg.PeerBandwidth,
	}
}

// Listen binds the TCP listener.
func (s *Server) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = l
	return nil
}

// Accept runs the accept loop, handling each connection in its own
// goroutine, until the listener is closed.
func (s *Server) Accept() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConnection(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleConnection runs the full per-connection lifecycle: handshake, then
// read-dispatch-respond until the peer disconnects or framing fails.
func (s *Server) handleConnection(conn net.Conn) {
	session := NewSession(conn, s.router, s.log)
	defer session.Close()

	if err := session.PerformHandshake(); err != nil {
		session.log.WithError(err).Info("handshake failed")
		return
	}

	// The outbound chunk size, window-ack size, and peer bandwidth this
	// server negotiates are sent as part of the connect response
	// (HandleConnect), not unconditionally right after the handshake.
	session.SetConnectParams(s.windowAckSize, s.peerBandwidth, s.outboundChunkSize)

	for {
		header, body, err := session.ReadMessage()
		if err != nil {
			if err != io.EOF {
				session.log.WithError(err).Info("connection closed")
			}
			return
		}

		if err := s.dispatch(session, header, body); err != nil {
			session.log.WithError(err).Warn("message handling failed")
			return
		}
	}
}

// dispatch routes one assembled message by message_type_id (§2.5): control
// messages are handled inline, AMF0 commands go to the command dispatcher,
// and media messages go to the publishing session's router hookup.
func (s *Server) dispatch(session *Session, header rtmp.MessageHeader, body []byte) error {
	// Control messages (types 1,2,3,5,6) are only valid on message stream
	// id 0 (§4.4); a peer sending one on another stream is malformed.
	if isControlMessageType(header.MessageTypeID) && header.MessageStreamID != 0 {
		return rtmp.ErrMalformed
	}

	switch header.MessageTypeID {
	case rtmp.MessageTypeSetChunkSize:
		size, err := rtmp.ParseSetChunkSize(body)
		if err != nil {
			return err
		}
		session.SetInboundChunkSize(size)

	case rtmp.MessageTypeAbortMessage:
		if len(body) >= 4 {
			csid := be32(body)
			session.AbortChunkStream(csid)
		}

	case rtmp.MessageTypeAck:
		bytesReceived, err := rtmp.ParseAck(body)
		if err != nil {
			return err
		}
		session.RecordAck(bytesReceived)

	case rtmp.MessageTypeWinAckSize:
		size, err := rtmp.ParseWindowAckSize(body)
		if err != nil {
			return err
		}
		session.RecordWindowAckSize(size)

	case rtmp.MessageTypeSetPeerBandwidth:
		size, limitType, err := rtmp.ParseSetPeerBandwidth(body)
		if err != nil {
			return err
		}
		session.RecordPeerBandwidth(size, limitType)

	case rtmp.MessageTypeUserCtrl:
		// No user-control event requires a server-side reaction in this
		// revision; ping requests from a peer don't occur server-side.

	case rtmp.MessageTypeCommandAMF0:
		return session.DispatchCommand(body, header.MessageStreamID)

	case rtmp.MessageTypeAudio, rtmp.MessageTypeVideo, rtmp.MessageTypeDataAMF0:
		session.PublishMedia(header.MessageTypeID, header.Timestamp, body)

	default:
		// Unrecognized message types are ignored, not an error.
	}

	if session.AckDue() {
		if err := session.SendAck(); err != nil {
			return err
		}
	}
	return nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// isControlMessageType reports whether t is one of the protocol
// control-message type ids that must arrive on message stream id 0.
func isControlMessageType(t byte) bool {
	switch t {
	case rtmp.MessageTypeSetChunkSize, rtmp.MessageTypeAbortMessage, rtmp.MessageTypeAck,
		rtmp.MessageTypeWinAckSize, rtmp.MessageTypeSetPeerBandwidth:
		return true
	default:
		return false
	}
}
