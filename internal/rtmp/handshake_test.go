package rtmp

import (
	"bytes"
	"testing"
)

// loopbackConn fakes a two-sided connection for handshake tests: writes go
// to out, reads come from in.
type loopbackConn struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func (c *loopbackConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *loopbackConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func TestPerformServerHandshakeSuccess(t *testing.T) {
	var clientBytes bytes.Buffer
	clientBytes.WriteByte(RTMPVersion)
	clientBytes.Write(make([]byte, HandshakeC1Size)) // C1
	clientBytes.Write(make([]byte, HandshakeC2Size)) // C2

	conn := &loopbackConn{in: &clientBytes, out: &bytes.Buffer{}}
	if err := PerformServerHandshake(conn); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	want := 1 + HandshakeS1Size + HandshakeS2Size
	if conn.out.Len() != want {
		t.Fatalf("server wrote %d bytes, want %d", conn.out.Len(), want)
	}
	if conn.out.Bytes()[0] != RTMPVersion {
		t.Errorf("S0 version = %d, want %d", conn.out.Bytes()[0], RTMPVersion)
	}
}

func TestPerformServerHandshakeRejectsBadVersion(t *testing.T) {
	var clientBytes bytes.Buffer
	clientBytes.WriteByte(99)

	conn := &loopbackConn{in: &clientBytes, out: &bytes.Buffer{}}
	err := PerformServerHandshake(conn)
	if err != ErrInvalidVersion {
		t.Fatalf("err = %v, want ErrInvalidVersion", err)
	}
}

func TestPerformServerHandshakeShortC1(t *testing.T) {
	var clientBytes bytes.Buffer
	clientBytes.WriteByte(RTMPVersion)
	clientBytes.Write(make([]byte, 10)) // too short

	conn := &loopbackConn{in: &clientBytes, out: &bytes.Buffer{}}
	if err := PerformServerHandshake(conn); err == nil {
		t.Fatal("expected error for short C1")
	}
}
