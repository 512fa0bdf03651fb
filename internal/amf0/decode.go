package amf0

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var (
	ErrUnexpectedType = errors.New("amf0: unexpected type marker")
	ErrInvalidData    = errors.New("amf0: invalid encoding")
)

// ReadValue reads and decodes a single AMF0 value from r.
func ReadValue(r io.Reader) (Value, error) {
	var typeMarker byte
	if err := binary.Read(r, binary.BigEndian, &typeMarker); err != nil {
		return nil, err
	}
	return readValueBody(r, typeMarker)
}

func readValueBody(r io.Reader, typeMarker byte) (Value, error) {
	switch typeMarker {
	case TypeNumber:
		return decodeNumber(r)
	case TypeBoolean:
		return decodeBoolean(r)
	case TypeString:
		return decodeString(r)
	case TypeNull, TypeUndefined:
		return nil, nil
	case TypeObject:
		return decodeObject(r)
	case TypeECMAArray:
		return decodeECMAArray(r)
	case TypeStrictArray:
		return decodeStrictArray(r)
	default:
		return nil, ErrUnexpectedType
	}
}

// ReadString reads a single AMF0 string value, rejecting any other type.
func ReadString(r io.Reader) (string, error) {
	var typeMarker byte
	if err := binary.Read(r, binary.BigEndian, &typeMarker); err != nil {
		return "", err
	}
	if typeMarker != TypeString {
		return "", ErrUnexpectedType
	}
	return decodeString(r)
}

func decodeNumber(r io.Reader) (float64, error) {
	var num float64
	err := binary.Read(r, binary.BigEndian, &num)
	return num, err
}

func decodeBoolean(r io.Reader) (bool, error) {
	var b byte
	if err := binary.Read(r, binary.BigEndian, &b); err != nil {
		return false, err
	}
	return b != 0, nil
}

func decodeString(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func decodeObject(r io.Reader) (Object, error) {
	obj := make(Object)
	for {
		var keyLen uint16
		if err := binary.Read(r, binary.BigEndian, &keyLen); err != nil {
			return nil, err
		}
		if keyLen == 0 {
			var endMarker byte
			if err := binary.Read(r, binary.BigEndian, &endMarker); err != nil {
				return nil, err
			}
			if endMarker != TypeObjectEnd {
				return nil, ErrInvalidData
			}
			break
		}
		keyBuf := make([]byte, keyLen)
		if _, err := io.ReadFull(r, keyBuf); err != nil {
			return nil, err
		}
		value, err := ReadValue(r)
		if err != nil {
			return nil, err
		}
		obj[string(keyBuf)] = value
	}
	return obj, nil
}

func decodeECMAArray(r io.Reader) (Object, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	// count is advisory; the wire form still terminates with the normal
	// empty-key/ObjectEnd pair, so it is decoded the same way as an object.
	return decodeObject(r)
}

func decodeStrictArray(r io.Reader) (Array, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	arr := make(Array, count)
	for i := uint32(0); i < count; i++ {
		val, err := ReadValue(r)
		if err != nil {
			return nil, err
		}
		arr[i] = val
	}
	return arr, nil
}

// ReadCommand decodes an RTMP command message body: a flat sequence of AMF0
// values read one after another until r is exhausted. Per §4.6 this is a
// concatenation, not a StrictArray — a command body never carries a 0x0A
// marker or an element count of its own.
func ReadCommand(r io.Reader) (Values, error) {
	var values Values
	for {
		val, err := ReadValue(r)
		if err != nil {
			if err == io.EOF {
				return values, nil
			}
			return nil, err
		}
		values = append(values, val)
	}
}
