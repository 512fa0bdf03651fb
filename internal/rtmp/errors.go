package rtmp

import "github.com/pkg/errors"

// Sentinel errors for the four semantic error kinds from §7. Io errors are
// whatever the underlying net.Conn returns (including io.EOF) and are not
// wrapped here; these four are the ones the framing layer itself raises.
var (
	// ErrMalformed covers unparseable headers and impossible fmt-inheritance
	// (fmt 1/2/3 on a chunk-stream-id with no prior chunk). Not recoverable —
	// the framing has no resync point.
	ErrMalformed = errors.New("rtmp: malformed chunk")

	// ErrNoPriorChunk is a specific Malformed cause: a fmt-1/2/3 chunk
	// arrived on a csid with no previously seen header to inherit from.
	ErrNoPriorChunk = errors.New("rtmp: no prior chunk header for this chunk stream id")

	// ErrUnsupported covers known-but-unimplemented wire fields, e.g. the
	// extended-timestamp sentinel (0xFFFFFF) this revision does not handle.
	ErrUnsupported = errors.New("rtmp: unsupported field")
)

// ErrIncomplete is not an error: it is the reassembler's loop-continuation
// signal meaning "read another chunk, no message is ready yet." Callers
// must not log it as a failure.
var ErrIncomplete = errors.New("rtmp: message incomplete, read next chunk")
