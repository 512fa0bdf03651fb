package rtmp

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestConnectionState() (*ConnectionState, *bytes.Buffer) {
	out := &bytes.Buffer{}
	conn := &loopbackConn{in: &bytes.Buffer{}, out: out}
	cs := NewConnectionState(conn, logrus.New())
	return cs, out
}

func TestConnectionStateWriteMessageUsesOutboundChunkSize(t *testing.T) {
	cs, out := newTestConnectionState()
	cs.SetOutboundChunkSize(4)

	if err := cs.WriteMessage(3, MessageTypeVideo, 0, 1, []byte("abcdefgh")); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	re := NewReassembler()
	re.SetMaxChunkSize(4)
	_, got, err := re.ReadChunk(out)
	for err == ErrIncomplete {
		_, got, err = re.ReadChunk(out)
	}
	if err != nil {
		t.Fatalf("reassembly failed: %v", err)
	}
	if string(got) != "abcdefgh" {
		t.Fatalf("got %q, want %q", got, "abcdefgh")
	}
}

func TestConnectionStateAckBookkeeping(t *testing.T) {
	cs, _ := newTestConnectionState()
	cs.SetAckWindowSize(10)

	cs.recordBytesReceived(5)
	if cs.AckDue() {
		t.Fatal("AckDue before window reached")
	}
	cs.recordBytesReceived(6)
	if !cs.AckDue() {
		t.Fatal("AckDue should be true once window exceeded")
	}
	if err := cs.SendAck(); err != nil {
		t.Fatalf("SendAck failed: %v", err)
	}
	if cs.AckDue() {
		t.Fatal("AckDue should reset after SendAck")
	}
}

func TestConnectionStatePublishingType(t *testing.T) {
	cs, _ := newTestConnectionState()
	if cs.PublishingType() != PublishingNone {
		t.Fatalf("default PublishingType = %v, want PublishingNone", cs.PublishingType())
	}
	cs.SetPublishingType(PublishingLive)
	if cs.PublishingType() != PublishingLive {
		t.Fatalf("PublishingType = %v, want PublishingLive", cs.PublishingType())
	}
}

func TestConnectionStateCloseTransitionsState(t *testing.T) {
	cs, _ := newTestConnectionState()
	cs.Close()
	if cs.State() != StateClosed {
		t.Fatalf("State = %v, want StateClosed", cs.State())
	}
}
