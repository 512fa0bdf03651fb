package rtmp

import "io"

// BasicHeader is the first 1-3 bytes of every chunk: the 2-bit format
// selector and the chunk-stream-id. Csid 0 and 1 are wire-encoding escapes
// for the one- and two-byte extended forms and are never stored here —
// Csid is always the logical value in [2, 65599].
type BasicHeader struct {
	Fmt  byte
	Csid uint32
}

// Serialize writes the basic header in its minimal wire form: one byte for
// csid in [2,63], two bytes (csid-64 in a single byte) for [64,319], three
// bytes (csid-64 big-endian in two bytes) for [320,65599].
func (h BasicHeader) Serialize() []byte {
	switch {
	case h.Csid < 64:
		return []byte{(h.Fmt << 6) | byte(h.Csid)}
	case h.Csid < 320:
		return []byte{h.Fmt << 6, byte(h.Csid - 64)}
	default:
		rel := h.Csid - 64
		return []byte{(h.Fmt << 6) | 1, byte(rel >> 8), byte(rel)}
	}
}

// DeserializeBasicHeader reads a basic header from r. It fails only on a
// short read, returning the reader's error unchanged; any first byte is
// structurally valid.
func DeserializeBasicHeader(r io.Reader) (BasicHeader, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:1]); err != nil {
		return BasicHeader{}, err
	}

	fmtBits := (b[0] >> 6) & 0x03
	csid6 := b[0] & 0x3F

	switch csid6 {
	case 0:
		if _, err := io.ReadFull(r, b[:1]); err != nil {
			return BasicHeader{}, err
		}
		return BasicHeader{Fmt: fmtBits, Csid: uint32(b[0]) + 64}, nil
	case 1:
		if _, err := io.ReadFull(r, b[:2]); err != nil {
			return BasicHeader{}, err
		}
		w := uint32(b[0])<<8 | uint32(b[1])
		return BasicHeader{Fmt: fmtBits, Csid: w + 64}, nil
	default:
		return BasicHeader{Fmt: fmtBits, Csid: uint32(csid6)}, nil
	}
}
