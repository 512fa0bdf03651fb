package rtmp

import (
	"io"

	"github.com/sirupsen/logrus"
)

// PublishingType is the negotiated intent of a connection once it has sent
// a publish or play command (§3). Zero value is PublishingNone.
type PublishingType int

const (
	PublishingNone PublishingType = iota
	PublishingLive
	PublishingPlay
)

func (p PublishingType) String() string {
	switch p {
	case PublishingLive:
		return "live"
	case PublishingPlay:
		return "play"
	default:
		return "none"
	}
}

// State is the connection's lifecycle stage (§4.4).
type State int

const (
	StateAwaitingHandshake State = iota
	StateReady
	StateClosed
)

// ConnectionState is the per-connection home for everything the chunk and
// command layers need: the socket, the reassembler (itself the exclusive
// owner of the per-csid last-header and incomplete-message maps), and the
// negotiated parameters from §3. It is created on accept and destroyed on
// connection close; nothing here is ever shared with another connection —
// see §5 and the source bug called out in §9.
type ConnectionState struct {
	conn io.ReadWriter

	reassembler       *Reassembler
	outboundChunkSize uint32

	ackWindowSize    uint32 // the window we told the peer to use (WindowAckSize we sent)
	bytesReceived    uint32 // payload bytes of completed messages read from the peer
	bytesAckedAt     uint32 // bytesReceived value as of the last Acknowledgement we sent
	peerWindowSize   uint32 // peer's declared WindowAckSize, if they sent one
	peerBandwidth    uint32 // peer's declared SetPeerBandwidth, if they sent one
	peerLimitType    byte
	peerAckCounter   uint32 // peer's self-reported received-byte counter (Acknowledgement)
	publishingType   PublishingType
	state            State

	Log logrus.FieldLogger
}

// NewConnectionState wraps conn with fresh, connection-local reassembly and
// negotiation state. log should already carry a connection-id field.
func NewConnectionState(conn io.ReadWriter, log logrus.FieldLogger) *ConnectionState {
	return &ConnectionState{
		conn:              conn,
		reassembler:       NewReassembler(),
		outboundChunkSize: DefaultChunkSize,
		state:             StateAwaitingHandshake,
		Log:               log,
	}
}

// PerformHandshake runs the handshake and, on success, transitions the
// connection AwaitingHandshake -> Ready (§4.4).
func (cs *ConnectionState) PerformHandshake() error {
	if err := PerformServerHandshake(cs.conn); err != nil {
		return err
	}
	cs.state = StateReady
	return nil
}

// State returns the connection's current lifecycle stage.
func (cs *ConnectionState) State() State { return cs.state }

// Close transitions the connection to Closed and releases the socket if it
// supports io.Closer. Per §5, this tears down all per-connection state
// synchronously; nothing outlives the connection.
func (cs *ConnectionState) Close() {
	cs.state = StateClosed
	if closer, ok := cs.conn.(io.Closer); ok {
		closer.Close()
	}
}

// ReadMessage reads chunks until a complete message is available, applying
// the per-csid inheritance and reassembly rules in §4.3. It never returns
// ErrIncomplete to its caller — that signal is consumed internally by
// looping for the next chunk, matching the per-connection-loop model in §5
// ("a single reader thread, no reordering").
func (cs *ConnectionState) ReadMessage() (MessageHeader, []byte, error) {
	for {
		header, payload, err := cs.reassembler.ReadChunk(cs.conn)
		if err == nil {
			cs.recordBytesReceived(uint32(len(payload)))
			return header, payload, nil
		}
		if err == ErrIncomplete {
			continue
		}
		if err != io.EOF && cs.Log != nil {
			cs.Log.WithError(err).Debug("chunk reassembly failed")
		}
		return MessageHeader{}, nil, err
	}
}

// WriteMessage frames and writes body as an outbound message on csid and
// streamID, using the connection's negotiated outbound chunk size (§4.7).
func (cs *ConnectionState) WriteMessage(csid uint32, msgType byte, timestamp, streamID uint32, body []byte) error {
	return WriteMessage(cs.conn, csid, msgType, timestamp, streamID, body, cs.outboundChunkSize)
}

// SetOutboundChunkSize updates the size used to frame chunks we write. This
// is distinct from the reassembler's inbound chunk size: §4.6 requires the
// connect response's SetChunkSize to affect only the outbound path.
func (cs *ConnectionState) SetOutboundChunkSize(size uint32) {
	cs.outboundChunkSize = size
}

// SetInboundChunkSize updates the size used to read chunk payloads, in
// response to a peer-sent SetChunkSize control message.
func (cs *ConnectionState) SetInboundChunkSize(size uint32) {
	cs.reassembler.SetMaxChunkSize(size)
}

// AbortChunkStream discards any partially-buffered message for csid, per
// the AbortMessage control message.
func (cs *ConnectionState) AbortChunkStream(csid uint32) {
	cs.reassembler.Abort(csid)
}

// SetAckWindowSize records the window-ack size we've told the peer to use,
// enabling our own Acknowledgement bookkeeping (a supplement beyond §4.5;
// see SPEC_FULL.md).
func (cs *ConnectionState) SetAckWindowSize(size uint32) {
	cs.ackWindowSize = size
}

// recordBytesReceived adds n to the count of bytes received from the peer;
// AckDue then reports whether an Acknowledgement is due, per the RTMP
// window-acknowledgement protocol. Overflow resets per convention at
// 0xf0000000.
func (cs *ConnectionState) recordBytesReceived(n uint32) {
	cs.bytesReceived += n
	if cs.bytesReceived >= 0xf0000000 {
		cs.bytesReceived = 0
		cs.bytesAckedAt = 0
	}
}

// AckDue reports whether enough bytes have accumulated since the last
// Acknowledgement to warrant sending another one.
func (cs *ConnectionState) AckDue() bool {
	return cs.ackWindowSize > 0 && cs.bytesReceived-cs.bytesAckedAt >= cs.ackWindowSize
}

// SendAck emits an Acknowledgement for the bytes received so far and
// updates the bookkeeping watermark.
func (cs *ConnectionState) SendAck() error {
	if err := cs.WriteMessage(2, MessageTypeAck, 0, 0, EncodeAck(cs.bytesReceived)); err != nil {
		return err
	}
	cs.bytesAckedAt = cs.bytesReceived
	return nil
}

// RecordWindowAckSize stores the peer's declared WindowAcknowledgementSize
// (§4.5, control message type 5).
func (cs *ConnectionState) RecordWindowAckSize(size uint32) {
	cs.peerWindowSize = size
}

// RecordPeerBandwidth stores the peer's declared SetPeerBandwidth (§4.5,
// control message type 6).
func (cs *ConnectionState) RecordPeerBandwidth(size uint32, limitType byte) {
	cs.peerBandwidth = size
	cs.peerLimitType = limitType
}

// RecordAck stores the peer's self-reported received-byte counter (§4.5,
// control message type 3).
func (cs *ConnectionState) RecordAck(bytesReceived uint32) {
	cs.peerAckCounter = bytesReceived
}

// SetPublishingType records the connection's negotiated publish/play
// intent, set by the publish/play command handlers (§4.6).
func (cs *ConnectionState) SetPublishingType(t PublishingType) {
	cs.publishingType = t
}

// PublishingType returns the connection's negotiated intent.
func (cs *ConnectionState) PublishingType() PublishingType {
	return cs.publishingType
}
