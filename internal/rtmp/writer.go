package rtmp

import "io"

// WriteMessage frames body as one or more outbound chunks on csid and
// streamID (§4.7). Every message is always framed with fmt 0 on its first
// chunk — this revision never compresses an outbound header against a
// previous one, regardless of what the peer's own chunks looked like.
// If body exceeds chunkSize it is split: the first chunk carries the full
// fmt-0 header, every following chunk is fmt 3 on the same csid carrying up
// to chunkSize more bytes. A zero-length body still emits one fmt-0 chunk
// with an empty payload.
func WriteMessage(w io.Writer, csid uint32, msgType byte, timestamp, streamID uint32, body []byte, chunkSize uint32) error {
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if timestamp >= maxTimestampOrLength {
		return ErrUnsupported // extended timestamps not implemented, §1
	}

	header := MessageHeader{
		Timestamp:       timestamp,
		MessageLength:   uint32(len(body)),
		MessageTypeID:   msgType,
		MessageStreamID: streamID,
	}

	offset := uint32(0)
	first := true
	for {
		fmtByte := byte(ChunkFmt3)
		if first {
			fmtByte = ChunkFmt0
		}

		basic := BasicHeader{Fmt: fmtByte, Csid: csid}
		if _, err := w.Write(basic.Serialize()); err != nil {
			return err
		}
		if first {
			if _, err := w.Write(serializeFmt0Tail(header)); err != nil {
				return err
			}
		}

		remaining := uint32(len(body)) - offset
		n := chunkSize
		if remaining < n {
			n = remaining
		}
		if n > 0 {
			if _, err := w.Write(body[offset : offset+n]); err != nil {
				return err
			}
			offset += n
		}

		first = false
		if offset >= uint32(len(body)) {
			break
		}
	}

	if flusher, ok := w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}
