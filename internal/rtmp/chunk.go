package rtmp

import "io"

// chunkStreamState is the per-csid reassembly state: the last header seen
// on this chunk stream (for fmt 1/2/3 inheritance) and whatever partial
// payload has been accumulated for the message currently in flight. It is
// owned exclusively by the Reassembler instance that created it — see §5,
// "no locking needed."
type chunkStreamState struct {
	lastHeader *MessageHeader
	buffer     []byte
}

// Reassembler ("the wrangler") turns a stream of chunks into complete
// messages, one connection's worth at a time. A Reassembler must never be
// shared between connections: the source's bug was exactly that — a
// process-wide last-header slot causing header inheritance to leak across
// connections (§9). Each ConnectionState owns exactly one Reassembler.
type Reassembler struct {
	streams      map[uint32]*chunkStreamState
	maxChunkSize uint32
}

// NewReassembler creates a reassembler with the protocol's default inbound
// chunk size (128 bytes, until the peer sends SetChunkSize).
func NewReassembler() *Reassembler {
	return &Reassembler{
		streams:      make(map[uint32]*chunkStreamState),
		maxChunkSize: DefaultChunkSize,
	}
}

// SetMaxChunkSize updates the size used to read subsequent chunk payloads.
// Per §4.3(a) this takes effect for chunks read after the call; any chunk
// already mid-read is unaffected.
func (re *Reassembler) SetMaxChunkSize(size uint32) {
	re.maxChunkSize = size
}

// Abort discards any partially-buffered message for csid, per the
// AbortMessage control message (§4.5). It is not an error to abort a csid
// with nothing buffered.
func (re *Reassembler) Abort(csid uint32) {
	if cs, ok := re.streams[csid]; ok {
		cs.buffer = nil
	}
}

// ReadChunk reads exactly one chunk from r and layers it onto whatever
// reassembly state exists for its chunk-stream-id (§4.3). Three outcomes:
//
//   - a complete message: (header, payload, nil)
//   - a message still in progress: (zero, nil, ErrIncomplete) — not a
//     failure, the connection loop should simply read the next chunk
//   - a framing failure: (zero, nil, err) where err wraps ErrMalformed or
//     ErrUnsupported, or is the underlying Io error from a short read
func (re *Reassembler) ReadChunk(r io.Reader) (MessageHeader, []byte, error) {
	basic, err := DeserializeBasicHeader(r)
	if err != nil {
		return MessageHeader{}, nil, err
	}

	cs, ok := re.streams[basic.Csid]
	if !ok {
		cs = &chunkStreamState{}
		re.streams[basic.Csid] = cs
	}

	header, err := deserializeMessageHeader(r, basic.Fmt, cs.lastHeader)
	if err != nil {
		return MessageHeader{}, nil, err
	}

	alreadyBuffered := uint32(len(cs.buffer))
	remaining := header.MessageLength - alreadyBuffered
	payloadSize := re.maxChunkSize
	if remaining < payloadSize {
		payloadSize = remaining
	}

	payload := make([]byte, payloadSize)
	if payloadSize > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return MessageHeader{}, nil, err
		}
	}

	headerCopy := header
	cs.lastHeader = &headerCopy

	if header.MessageLength <= re.maxChunkSize && alreadyBuffered == 0 {
		return header, payload, nil
	}

	cs.buffer = append(cs.buffer, payload...)
	if uint32(len(cs.buffer)) < header.MessageLength {
		return MessageHeader{}, nil, ErrIncomplete
	}

	complete := cs.buffer
	cs.buffer = nil
	return header, complete, nil
}
