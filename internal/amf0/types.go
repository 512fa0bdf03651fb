// Package amf0 implements the subset of AMF0 (Action Message Format) needed
// to read and write RTMP command messages: numbers, booleans, strings,
// null/undefined, objects, and ECMA arrays. It stands in for the
// `read_amf0_value`/`write_amf0_value` boundary the command dispatcher is
// built against: ReadValue and WriteValue handle single values, and the
// dispatcher reads and writes whole command bodies through ReadCommand and
// WriteCommand, which are built on them.
package amf0

// AMF0 type markers, as laid out on the wire.
const (
	TypeNumber      = 0
	TypeBoolean     = 1
	TypeString      = 2
	TypeObject      = 3
	TypeNull        = 5
	TypeUndefined   = 6
	TypeReference   = 7
	TypeECMAArray   = 8
	TypeObjectEnd   = 9
	TypeStrictArray = 10
	TypeDate        = 11
	TypeLongString  = 12
	TypeXMLDocument = 15
	TypeTypedObject = 16
)

// Value is a decoded AMF0 value: float64, bool, string, nil, Object, or
// Array.
type Value interface{}

// Object represents an AMF0 object or ECMA array (key-value pairs).
type Object map[string]Value

// Array represents an AMF0 strict array.
type Array []Value

// Values is a flat sequence of top-level AMF0 values, as carried by an RTMP
// command message body (§4.6): a command name, a transaction id, and zero
// or more further values, one after another with no enclosing wrapper.
type Values []Value
