package rtmp

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidVersion is returned when C0 names an RTMP version other than
// RTMPVersion. The handshake spec (§4.2) treats this as fatal.
var ErrInvalidVersion = errors.New("rtmp: unsupported handshake version")

// PerformServerHandshake runs the server side of the three-phase RTMP
// handshake (§4.2): read C0/C1, send S0/S1/S2, read C2. C2's content is not
// validated against S1 in this revision — per §4.2 it is accepted as-is.
// Any short read or write is fatal and returned unwrapped so callers can
// distinguish it from ErrInvalidVersion with errors.Is.
func PerformServerHandshake(conn io.ReadWriter) error {
	var c0 [1]byte
	if _, err := io.ReadFull(conn, c0[:]); err != nil {
		return err
	}
	if c0[0] != RTMPVersion {
		return ErrInvalidVersion
	}

	c1 := make([]byte, HandshakeC1Size)
	if _, err := io.ReadFull(conn, c1); err != nil {
		return err
	}

	if _, err := conn.Write([]byte{RTMPVersion}); err != nil {
		return err
	}

	s1 := make([]byte, HandshakeS1Size)
	binary.BigEndian.PutUint32(s1[0:4], uint32(time.Now().Unix()))
	binary.BigEndian.PutUint32(s1[4:8], 0)
	if _, err := rand.Read(s1[8:]); err != nil {
		return err
	}
	if _, err := conn.Write(s1); err != nil {
		return err
	}

	// S2 echoes C1's timestamp and random bytes, with a zero second field.
	s2 := make([]byte, HandshakeS2Size)
	binary.BigEndian.PutUint32(s2[0:4], binary.BigEndian.Uint32(c1[0:4]))
	binary.BigEndian.PutUint32(s2[4:8], 0)
	copy(s2[8:], c1[8:])
	if _, err := conn.Write(s2); err != nil {
		return err
	}

	c2 := make([]byte, HandshakeC2Size)
	if _, err := io.ReadFull(conn, c2); err != nil {
		return err
	}

	return nil
}
