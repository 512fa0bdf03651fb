package rtmp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MessageHeader is the logical chunk message header (§3), always fully
// populated regardless of which wire format produced it — callers never see
// the fmt-dependent partiality, only the reassembler does.
type MessageHeader struct {
	Timestamp       uint32
	MessageLength   uint32
	MessageTypeID   byte
	MessageStreamID uint32
}

// deserializeMessageHeader reads the fmt-dependent tail of a chunk message
// header (11/7/3/0 bytes for fmt 0/1/2/3) and layers it onto prev, the last
// header seen on this same chunk-stream-id, per the inheritance table in
// §3/§4.3. prev is nil only when no chunk has yet been seen on this csid;
// fmt 1/2/3 in that state is ErrNoPriorChunk, since there is nothing to
// inherit from and the source's behavior here (a panic) is a bug, not a
// feature, per §9.
func deserializeMessageHeader(r io.Reader, fmtByte byte, prev *MessageHeader) (MessageHeader, error) {
	if fmtByte != ChunkFmt0 && prev == nil {
		return MessageHeader{}, fmt.Errorf("%w: %w", ErrMalformed, ErrNoPriorChunk)
	}

	switch fmtByte {
	case ChunkFmt0:
		var buf [11]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return MessageHeader{}, err
		}
		ts := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		if ts == maxTimestampOrLength {
			return MessageHeader{}, errors.Wrap(ErrUnsupported, "extended timestamp")
		}
		return MessageHeader{
			Timestamp:       ts,
			MessageLength:   uint32(buf[3])<<16 | uint32(buf[4])<<8 | uint32(buf[5]),
			MessageTypeID:   buf[6],
			MessageStreamID: binary.LittleEndian.Uint32(buf[7:11]),
		}, nil

	case ChunkFmt1:
		var buf [7]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return MessageHeader{}, err
		}
		delta := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		if delta == maxTimestampOrLength {
			return MessageHeader{}, errors.Wrap(ErrUnsupported, "extended timestamp")
		}
		return MessageHeader{
			Timestamp:       prev.Timestamp + delta,
			MessageLength:   uint32(buf[3])<<16 | uint32(buf[4])<<8 | uint32(buf[5]),
			MessageTypeID:   buf[6],
			MessageStreamID: prev.MessageStreamID,
		}, nil

	case ChunkFmt2:
		var buf [3]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return MessageHeader{}, err
		}
		delta := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		if delta == maxTimestampOrLength {
			return MessageHeader{}, errors.Wrap(ErrUnsupported, "extended timestamp")
		}
		return MessageHeader{
			Timestamp:       prev.Timestamp + delta,
			MessageLength:   prev.MessageLength,
			MessageTypeID:   prev.MessageTypeID,
			MessageStreamID: prev.MessageStreamID,
		}, nil

	default: // ChunkFmt3: full repeat, zero tail bytes
		return *prev, nil
	}
}

// serializeFmt0Tail writes the 11-byte message-header tail used by every
// outbound chunk in this revision (the writer always frames with fmt 0 on
// the first chunk of a message; see writer.go).
func serializeFmt0Tail(h MessageHeader) []byte {
	buf := make([]byte, 11)
	buf[0] = byte(h.Timestamp >> 16)
	buf[1] = byte(h.Timestamp >> 8)
	buf[2] = byte(h.Timestamp)
	buf[3] = byte(h.MessageLength >> 16)
	buf[4] = byte(h.MessageLength >> 8)
	buf[5] = byte(h.MessageLength)
	buf[6] = h.MessageTypeID
	binary.LittleEndian.PutUint32(buf[7:11], h.MessageStreamID)
	return buf
}
