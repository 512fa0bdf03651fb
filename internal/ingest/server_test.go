package ingest

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"driftcast/internal/amf0"
	"driftcast/internal/rtmp"
)

func drainHandshake(t *testing.T, client net.Conn) {
	t.Helper()
	// C0 + C1
	c1 := make([]byte, 1+rtmp.HandshakeC1Size)
	c1[0] = rtmp.RTMPVersion
	if _, err := client.Write(c1); err != nil {
		t.Fatalf("write C0/C1 failed: %v", err)
	}

	// S0 + S1 + S2
	s := make([]byte, 1+rtmp.HandshakeS1Size+rtmp.HandshakeS2Size)
	if _, err := readFull(client, s); err != nil {
		t.Fatalf("read S0/S1/S2 failed: %v", err)
	}
	if s[0] != rtmp.RTMPVersion {
		t.Fatalf("S0 version = %d, want %d", s[0], rtmp.RTMPVersion)
	}

	// C2
	if _, err := client.Write(make([]byte, rtmp.HandshakeC2Size)); err != nil {
		t.Fatalf("write C2 failed: %v", err)
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// TestServerConnectAndPublishEndToEnd drives a full connection through the
// accept-less handleConnection path over a net.Pipe: handshake, connect,
// createStream, publish, then a fragmented video message, mirroring the
// literal scenarios end-to-end-but-in-memory (no subprocess, no real TCP).
func TestServerConnectAndPublishEndToEnd(t *testing.T) {
	client, serverSide := net.Pipe()
	defer client.Close()

	rt := &recordingRouter{}
	srv := NewServer(Config{OutboundChunkSize: 5000, WindowAckSize: 5_000_000, PeerBandwidth: 5_000_000}, rt, logrus.New())

	done := make(chan struct{})
	go func() {
		srv.handleConnection(serverSide)
		close(done)
	}()

	drainHandshake(t, client)

	re := rtmp.NewReassembler()

	// connect
	connectBody, _ := amf0.WriteCommand(amf0.Values{"connect", float64(1), amf0.Object{"app": "live"}})
	if err := rtmp.WriteMessage(client, 3, rtmp.MessageTypeCommandAMF0, 0, 0, connectBody, rtmp.DefaultChunkSize); err != nil {
		t.Fatalf("write connect failed: %v", err)
	}

	// The ordered connect response: WindowAckSize, SetPeerBandwidth,
	// SetChunkSize, then _result (§4.6, §8 scenario 3).
	wantTypes := []byte{rtmp.MessageTypeWinAckSize, rtmp.MessageTypeSetPeerBandwidth, rtmp.MessageTypeSetChunkSize, rtmp.MessageTypeCommandAMF0}
	for i, want := range wantTypes {
		header, body, err := re.ReadChunk(client)
		if err != nil {
			t.Fatalf("reading connect response %d failed: %v", i, err)
		}
		if header.MessageTypeID != want {
			t.Fatalf("connect response %d type = %d, want %d", i, header.MessageTypeID, want)
		}
		// The server frames everything after its SetChunkSize at the new
		// size, so the client side must read at that size too.
		if header.MessageTypeID == rtmp.MessageTypeSetChunkSize {
			size, err := rtmp.ParseSetChunkSize(body)
			if err != nil {
				t.Fatalf("parsing SetChunkSize failed: %v", err)
			}
			re.SetMaxChunkSize(size)
		}
	}

	// createStream
	csBody, _ := amf0.WriteCommand(amf0.Values{"createStream", float64(2), nil})
	if err := rtmp.WriteMessage(client, 3, rtmp.MessageTypeCommandAMF0, 0, 0, csBody, rtmp.DefaultChunkSize); err != nil {
		t.Fatalf("write createStream failed: %v", err)
	}
	_, createStreamBody, err := re.ReadChunk(client)
	if err != nil {
		t.Fatalf("reading createStream response failed: %v", err)
	}
	result, err := amf0.ReadCommand(bytes.NewReader(createStreamBody))
	if err != nil {
		t.Fatalf("decoding createStream result failed: %v", err)
	}
	streamID := uint32(result[3].(float64))

	// publish
	pubBody, _ := amf0.WriteCommand(amf0.Values{"publish", float64(4), nil, "streamA", "live"})
	if err := rtmp.WriteMessage(client, 3, rtmp.MessageTypeCommandAMF0, 0, streamID, pubBody, rtmp.DefaultChunkSize); err != nil {
		t.Fatalf("write publish failed: %v", err)
	}
	if _, _, err := re.ReadChunk(client); err != nil { // StreamBegin
		t.Fatalf("reading StreamBegin failed: %v", err)
	}
	if _, _, err := re.ReadChunk(client); err != nil { // onStatus
		t.Fatalf("reading publish onStatus failed: %v", err)
	}

	// A 300-byte video message, fragmented at 128 bytes (scenario 5).
	videoPayload := bytes.Repeat([]byte{0xAB}, 300)
	if err := rtmp.WriteMessage(client, 6, rtmp.MessageTypeVideo, 0, streamID, videoPayload, 128); err != nil {
		t.Fatalf("write video failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if len(rt.messages) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for media to reach the router")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if !bytes.Equal(rt.messages[0].Payload, videoPayload) {
		t.Fatalf("routed payload length = %d, want %d", len(rt.messages[0].Payload), len(videoPayload))
	}

	client.Close()
	<-done
}
