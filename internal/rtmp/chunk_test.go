package rtmp

import (
	"bytes"
	"io"
	"testing"
)

// writeRawChunk assembles one on-wire chunk: basic header, fmt-dependent
// message header tail, and payload. Used to build test fixtures without
// going through WriteMessage (which always frames fmt 0).
func writeRawChunk(buf *bytes.Buffer, fmtByte byte, csid uint32, tail []byte, payload []byte) {
	buf.Write(BasicHeader{Fmt: fmtByte, Csid: csid}.Serialize())
	buf.Write(tail)
	buf.Write(payload)
}

func fmt0Tail(ts, length uint32, typeID byte, streamID uint32) []byte {
	return serializeFmt0Tail(MessageHeader{
		Timestamp:       ts,
		MessageLength:   length,
		MessageTypeID:   typeID,
		MessageStreamID: streamID,
	})
}

func TestReassemblerSingleChunkMessage(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello")
	writeRawChunk(&buf, ChunkFmt0, 3, fmt0Tail(0, uint32(len(payload)), MessageTypeCommandAMF0, 0), payload)

	re := NewReassembler()
	header, got, err := re.ReadChunk(&buf)
	if err != nil {
		t.Fatalf("ReadChunk failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
	if header.MessageTypeID != MessageTypeCommandAMF0 {
		t.Errorf("MessageTypeID = %d, want %d", header.MessageTypeID, MessageTypeCommandAMF0)
	}
}

func TestReassemblerFragmentedMessage(t *testing.T) {
	re := NewReassembler()
	re.SetMaxChunkSize(4)

	full := []byte("0123456789") // 10 bytes, split into 4+4+2 with fmt0+fmt3+fmt3
	var buf bytes.Buffer
	writeRawChunk(&buf, ChunkFmt0, 4, fmt0Tail(0, uint32(len(full)), MessageTypeVideo, 1), full[0:4])
	writeRawChunk(&buf, ChunkFmt3, 4, nil, full[4:8])
	writeRawChunk(&buf, ChunkFmt3, 4, nil, full[8:10])

	_, _, err := re.ReadChunk(&buf)
	if err != ErrIncomplete {
		t.Fatalf("first chunk: err = %v, want ErrIncomplete", err)
	}
	_, _, err = re.ReadChunk(&buf)
	if err != ErrIncomplete {
		t.Fatalf("second chunk: err = %v, want ErrIncomplete", err)
	}
	header, got, err := re.ReadChunk(&buf)
	if err != nil {
		t.Fatalf("third chunk failed: %v", err)
	}
	if !bytes.Equal(got, full) {
		t.Fatalf("reassembled payload = %q, want %q", got, full)
	}
	if header.MessageStreamID != 1 {
		t.Errorf("MessageStreamID = %d, want 1", header.MessageStreamID)
	}
}

func TestReassemblerFmt3InheritsHeader(t *testing.T) {
	re := NewReassembler()
	var buf bytes.Buffer
	writeRawChunk(&buf, ChunkFmt0, 5, fmt0Tail(100, 5, MessageTypeAudio, 2), []byte("aaaaa"))
	writeRawChunk(&buf, ChunkFmt3, 5, nil, []byte("bbbbb"))

	h1, _, err := re.ReadChunk(&buf)
	if err != nil {
		t.Fatalf("first chunk failed: %v", err)
	}
	h2, _, err := re.ReadChunk(&buf)
	if err != nil {
		t.Fatalf("second chunk failed: %v", err)
	}
	if h2.Timestamp != h1.Timestamp || h2.MessageLength != h1.MessageLength || h2.MessageTypeID != h1.MessageTypeID || h2.MessageStreamID != h1.MessageStreamID {
		t.Errorf("fmt3 header = %+v, want full inheritance of %+v", h2, h1)
	}
}

func TestReassemblerNoPriorChunkIsMalformed(t *testing.T) {
	re := NewReassembler()
	var buf bytes.Buffer
	writeRawChunk(&buf, ChunkFmt3, 6, nil, nil)

	_, _, err := re.ReadChunk(&buf)
	if err == nil {
		t.Fatal("expected error for fmt3 with no prior header")
	}
}

func TestReassemblerIndependentChunkStreams(t *testing.T) {
	re := NewReassembler()
	var buf bytes.Buffer
	writeRawChunk(&buf, ChunkFmt0, 3, fmt0Tail(0, 3, MessageTypeAudio, 1), []byte("aaa"))
	writeRawChunk(&buf, ChunkFmt0, 4, fmt0Tail(0, 3, MessageTypeVideo, 1), []byte("bbb"))
	writeRawChunk(&buf, ChunkFmt3, 3, nil, []byte("ccc")) // only valid if csid 3's header survived csid 4's traffic

	if _, p1, err := re.ReadChunk(&buf); err != nil || string(p1) != "aaa" {
		t.Fatalf("csid 3 first read: payload=%q err=%v", p1, err)
	}
	if _, p2, err := re.ReadChunk(&buf); err != nil || string(p2) != "bbb" {
		t.Fatalf("csid 4 read: payload=%q err=%v", p2, err)
	}
	h3, _, err := re.ReadChunk(&buf)
	if err != nil {
		t.Fatalf("csid 3 fmt3 read failed: %v", err)
	}
	if h3.MessageTypeID != MessageTypeAudio {
		t.Errorf("csid 3 fmt3 inherited type %d, want %d (csid 4 traffic must not leak in)", h3.MessageTypeID, MessageTypeAudio)
	}
}

func TestReassemblerAbortDiscardsPartial(t *testing.T) {
	re := NewReassembler()
	re.SetMaxChunkSize(2)
	var buf bytes.Buffer
	writeRawChunk(&buf, ChunkFmt0, 3, fmt0Tail(0, 10, MessageTypeVideo, 1), []byte("xy"))

	_, _, err := re.ReadChunk(&buf)
	if err != ErrIncomplete {
		t.Fatalf("err = %v, want ErrIncomplete", err)
	}
	re.Abort(3)

	// A fresh fmt0 message on the same csid should not see the aborted bytes.
	buf.Reset()
	writeRawChunk(&buf, ChunkFmt0, 3, fmt0Tail(0, 2, MessageTypeVideo, 1), []byte("ab"))
	_, got, err := re.ReadChunk(&buf)
	if err != nil {
		t.Fatalf("ReadChunk after abort failed: %v", err)
	}
	if string(got) != "ab" {
		t.Fatalf("payload = %q, want %q (aborted bytes must not linger)", got, "ab")
	}
}

func TestReassemblerShortReadPropagates(t *testing.T) {
	re := NewReassembler()
	_, _, err := re.ReadChunk(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}
