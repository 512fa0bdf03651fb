package rtmp

import "encoding/binary"

// ParseSetChunkSize decodes a SetChunkSize payload (§4.1), masking bit 31
// on read to match the masking the spec requires on write — a peer that
// didn't mask is still interpreted as intending the low 31 bits.
func ParseSetChunkSize(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, ErrMalformed
	}
	size := binary.BigEndian.Uint32(body) &^ (1 << 31)
	if size == 0 {
		size = 1 // clamp to >= 1 per §4.5
	}
	return size, nil
}

// EncodeSetChunkSize encodes a SetChunkSize payload, masking bit 31 to zero.
func EncodeSetChunkSize(size uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, size&^(1<<31))
	return buf
}

// ParseWindowAckSize decodes a bare u32 WindowAcknowledgementSize payload.
func ParseWindowAckSize(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, ErrMalformed
	}
	return binary.BigEndian.Uint32(body), nil
}

// EncodeWindowAckSize encodes a WindowAcknowledgementSize payload.
func EncodeWindowAckSize(size uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, size)
	return buf
}

// ParseSetPeerBandwidth decodes a SetPeerBandwidth payload: u32 window size
// plus one limit-type byte in {0 hard, 1 soft, 2 dynamic}.
func ParseSetPeerBandwidth(body []byte) (size uint32, limitType byte, err error) {
	if len(body) < 5 {
		return 0, 0, ErrMalformed
	}
	return binary.BigEndian.Uint32(body), body[4], nil
}

// EncodeSetPeerBandwidth encodes a SetPeerBandwidth payload.
func EncodeSetPeerBandwidth(size uint32, limitType byte) []byte {
	buf := make([]byte, 5)
	binary.BigEndian.PutUint32(buf[0:4], size)
	buf[4] = limitType
	return buf
}

// EncodeStreamBegin encodes a StreamBegin user-control event for the given
// message stream id.
func EncodeStreamBegin(streamID uint32) []byte {
	buf := make([]byte, 6)
	binary.BigEndian.PutUint16(buf[0:2], ControlStreamBegin)
	binary.BigEndian.PutUint32(buf[2:6], streamID)
	return buf
}

// ParseAck decodes an Acknowledgement payload: the peer's reported
// received-byte counter.
func ParseAck(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, ErrMalformed
	}
	return binary.BigEndian.Uint32(body), nil
}

// EncodeAck encodes an Acknowledgement payload.
func EncodeAck(bytesReceived uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, bytesReceived)
	return buf
}
