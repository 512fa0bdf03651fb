package ingest

import (
	"bytes"

	"github.com/pkg/errors"

	"driftcast/internal/amf0"
	"driftcast/internal/rtmp"
)

var (
	errBadCommand  = errors.New("ingest: command too short")
	errNoApp       = errors.New("ingest: app not set")
	errNoStream    = errors.New("ingest: stream name missing")
	errAlreadyPub  = errors.New("ingest: already publishing")
)

// DispatchCommand decodes an AMF0 command message body and routes it by
// name (§4.6). streamID is the message stream id the command arrived on,
// needed by publish/play to reply on the right stream.
func (s *Session) DispatchCommand(body []byte, streamID uint32) error {
	values, err := amf0.ReadCommand(bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "decode command")
	}
	if len(values) == 0 {
		return nil
	}
	name, ok := values[0].(string)
	if !ok {
		return nil
	}

	s.log.WithField("command", name).Debug("dispatching command")

	switch name {
	case "connect":
		return s.HandleConnect(values)
	case "releaseStream":
		return s.HandleReleaseStream(values)
	case "FCPublish":
		return s.HandleFCPublish(values)
	case "createStream":
		return s.HandleCreateStream(values)
	case "publish":
		return s.HandlePublish(values, streamID)
	case "play":
		return s.HandlePlay(values, streamID)
	case "deleteStream", "closeStream", "FCUnpublish":
		return s.HandleDeleteStream(values)
	default:
		// Unrecognized commands are ignored, not an error (§4.6).
		return nil
	}
}

// writeCommand encodes values as a flat AMF0 command body and writes it on
// csid/streamID.
func (s *Session) writeCommand(csid uint32, streamID uint32, values amf0.Values) error {
	body, err := amf0.WriteCommand(values)
	if err != nil {
		return err
	}
	return s.WriteMessage(csid, rtmp.MessageTypeCommandAMF0, 0, streamID, body)
}

// HandleConnect handles the connect command: ["connect", txnID, cmdObject].
// Per §4.6 the response is sent in order: WindowAckSize, SetPeerBandwidth,
// SetChunkSize, then _result.
func (s *Session) HandleConnect(values amf0.Values) error {
	if len(values) < 2 {
		return errBadCommand
	}

	app := "live"
	objectEncoding := float64(0)
	if len(values) >= 3 {
		if cmdObj, ok := values[2].(amf0.Object); ok {
			if v, ok := cmdObj["app"].(string); ok {
				app = v
			}
			if v, ok := cmdObj["objectEncoding"].(float64); ok {
				objectEncoding = v
			}
		}
	}
	s.SetApp(app)

	if err := s.WriteMessage(2, rtmp.MessageTypeWinAckSize, 0, 0, rtmp.EncodeWindowAckSize(s.windowAckSize)); err != nil {
		return errors.Wrap(err, "send window ack size")
	}
	s.SetAckWindowSize(s.windowAckSize)

	if err := s.WriteMessage(2, rtmp.MessageTypeSetPeerBandwidth, 0, 0, rtmp.EncodeSetPeerBandwidth(s.peerBandwidth, rtmp.LimitSoft)); err != nil {
		return errors.Wrap(err, "send set peer bandwidth")
	}

	if err := s.WriteMessage(2, rtmp.MessageTypeSetChunkSize, 0, 0, rtmp.EncodeSetChunkSize(s.outboundChunkSize)); err != nil {
		return errors.Wrap(err, "send set chunk size")
	}
	s.SetOutboundChunkSize(s.outboundChunkSize)

	transID := toFloat64(values[1])
	result := amf0.Values{
		"_result",
		transID,
		amf0.Object{
			"fmsVer":         "FMS/3,0,1,123",
			"capabilities":   float64(31),
			"mode":           "live",
			"objectEncoding": objectEncoding,
		},
		amf0.Object{
			"level":          "status",
			"code":           "NetConnection.Connect.Success",
			"description":    "Connection succeeded.",
			"objectEncoding": objectEncoding,
		},
	}
	return s.writeCommand(3, 0, result)
}

// HandleReleaseStream replies bare _result to releaseStream, a pre-publish
// command some encoders (FFmpeg among them) send before createStream.
func (s *Session) HandleReleaseStream(values amf0.Values) error {
	if len(values) < 2 {
		return nil
	}
	return s.writeCommand(3, 0, amf0.Values{"_result", toFloat64(values[1]), nil})
}

// HandleFCPublish replies onFCPublish, the companion to releaseStream some
// encoders expect before createStream.
func (s *Session) HandleFCPublish(values amf0.Values) error {
	if len(values) < 2 {
		return nil
	}
	return s.writeCommand(3, 0, amf0.Values{"onFCPublish", toFloat64(values[1]), nil})
}

// HandleCreateStream allocates a new message stream id and replies _result
// with it (§4.6).
func (s *Session) HandleCreateStream(values amf0.Values) error {
	if len(values) < 2 {
		return errBadCommand
	}
	streamID := s.nextStreamID
	s.nextStreamID++

	return s.writeCommand(3, 0, amf0.Values{"_result", toFloat64(values[1]), nil, float64(streamID)})
}

// HandlePublish handles publish: ["publish", txnID, null, streamName,
// publishType]. streamName position varies across encoders; extractStreamName
// tries the standard slot first, then falls back. Replies StreamBegin
// followed by onStatus NetStream.Publish.Start.
func (s *Session) HandlePublish(values amf0.Values, streamID uint32) error {
	if s.PublishingType() != rtmp.PublishingNone {
		return errAlreadyPub
	}
	if s.App() == "" {
		return errNoApp
	}
	name := extractStreamName(values)
	if name == "" {
		return errNoStream
	}

	s.SetStreamName(name)
	s.SetPublishingType(rtmp.PublishingLive)

	if err := s.WriteMessage(2, rtmp.MessageTypeUserCtrl, 0, 0, rtmp.EncodeStreamBegin(streamID)); err != nil {
		s.log.WithError(err).Warn("failed to send StreamBegin")
	}

	return s.sendOnStatus(streamID, "status", "NetStream.Publish.Start", "Started publishing stream.")
}

// HandlePlay handles play: ["play", txnID, null, streamName]. Per §4.6 this
// only persists play intent; no response is emitted in this revision, and
// the optional start parameter is never read.
func (s *Session) HandlePlay(values amf0.Values, streamID uint32) error {
	name := extractStreamName(values)
	if name == "" {
		return errNoStream
	}
	s.SetStreamName(name)
	s.SetPublishingType(rtmp.PublishingPlay)
	return nil
}

// HandleDeleteStream handles deleteStream/closeStream/FCUnpublish: the
// client is tearing its stream down. This revision just clears publishing
// state; the connection itself is closed by the caller on EOF.
func (s *Session) HandleDeleteStream(values amf0.Values) error {
	s.SetStreamName("")
	s.SetPublishingType(rtmp.PublishingNone)
	return nil
}

// sendOnStatus sends an onStatus command on chunk stream 5 (a
// convention carried over from the teacher's command framing for
// status/result-style replies), replying on the given message stream id.
func (s *Session) sendOnStatus(streamID uint32, level, code, description string) error {
	status := amf0.Object{
		"level":       level,
		"code":        code,
		"description": description,
	}
	return s.writeCommand(5, streamID, amf0.Values{"onStatus", float64(0), nil, status})
}

// extractStreamName pulls the stream name out of a publish/play command,
// tolerating clients that omit the null command-object slot.
func extractStreamName(values amf0.Values) string {
	if len(values) >= 4 {
		if name, ok := values[3].(string); ok {
			return name
		}
	}
	if len(values) >= 3 {
		if name, ok := values[2].(string); ok {
			return name
		}
	}
	return ""
}

// toFloat64 coerces a decoded AMF0 transaction id to float64, defaulting to
// 0 for anything unexpected rather than failing the whole command.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
