// Package rtmp implements the RTMP chunk-stream framing layer: the
// handshake, the basic/message chunk header codecs, the chunk reassembler,
// and the chunk writer. It knows nothing about AMF0 commands or stream
// registries — those live one layer up, in package ingest.
package rtmp

// RTMPVersion is the only handshake version this server accepts.
const RTMPVersion = 3

// Handshake record sizes, fixed by the protocol.
const (
	HandshakeC1Size = 1536
	HandshakeS1Size = 1536
	HandshakeS2Size = 1536
	HandshakeC2Size = 1536
)

// DefaultChunkSize is the chunk size in effect before any SetChunkSize
// message has been exchanged, in either direction.
const DefaultChunkSize = 128

// maxTimestampOrLength is the largest value the 24-bit timestamp,
// timestamp-delta, and message-length wire fields can hold. In a timestamp
// or timestamp-delta field this value is the extended-timestamp sentinel.
const maxTimestampOrLength = 0xFFFFFF

// MaxSetChunkSize is the largest value SetChunkSize's 31-bit payload can
// carry (bit 31 is masked to zero on both serialize and deserialize).
const MaxSetChunkSize = 0x7FFFFFFF

// Message type IDs (§6).
const (
	MessageTypeSetChunkSize     = 1
	MessageTypeAbortMessage     = 2
	MessageTypeAck              = 3
	MessageTypeUserCtrl         = 4
	MessageTypeWinAckSize       = 5
	MessageTypeSetPeerBandwidth = 6
	MessageTypeAudio            = 8
	MessageTypeVideo            = 9
	MessageTypeDataAMF0         = 18
	MessageTypeSharedObjectAMF0 = 19
	MessageTypeCommandAMF0      = 20
)

// Chunk basic-header format selectors (§3).
const (
	ChunkFmt0 = 0 // 11-byte message header
	ChunkFmt1 = 1 // 7-byte message header
	ChunkFmt2 = 2 // 3-byte message header
	ChunkFmt3 = 3 // no message header, full inheritance
)

// User-control event types carried inside MessageTypeUserCtrl.
const (
	ControlStreamBegin      = 0
	ControlStreamEOF        = 1
	ControlStreamDry        = 2
	ControlSetBufferLength  = 3
	ControlStreamIsRecorded = 4
	ControlPingRequest      = 6
	ControlPingResponse     = 7
)

// PeerBandwidth limit types for SetPeerBandwidth (§4.1).
const (
	LimitHard    = 0
	LimitSoft    = 1
	LimitDynamic = 2
)
