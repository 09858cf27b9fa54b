// Package jsontime provides time types that serialize to wire-friendly
// representations. Milli serializes to Unix milliseconds in both JSON and
// msgpack; Duration serializes to a duration string in JSON.
package jsontime

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Milli is a time.Time that serializes to/from Unix milliseconds.
type Milli time.Time

// Now returns the current time as Milli.
func Now() Milli {
	return Milli(time.Now())
}

// Time returns the underlying time.Time value.
func (m Milli) Time() time.Time {
	return time.Time(m)
}

// Before reports whether m is before t.
func (m Milli) Before(t Milli) bool {
	return time.Time(m).Before(time.Time(t))
}

// After reports whether m is after t.
func (m Milli) After(t Milli) bool {
	return time.Time(m).After(time.Time(t))
}

// IsZero reports whether m represents the zero time instant.
func (m Milli) IsZero() bool {
	return time.Time(m).IsZero()
}

// Sub returns the duration m-t.
func (m Milli) Sub(t Milli) time.Duration {
	return time.Time(m).Sub(time.Time(t))
}

// String returns the time formatted as a string.
func (m Milli) String() string {
	return time.Time(m).String()
}

// MarshalJSON implements json.Marshaler.
func (m Milli) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(m).UnixMilli())
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Milli) UnmarshalJSON(b []byte) error {
	var t int64
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	*m = Milli(time.UnixMilli(t))
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (m Milli) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeInt64(time.Time(m).UnixMilli())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (m *Milli) DecodeMsgpack(dec *msgpack.Decoder) error {
	t, err := dec.DecodeInt64()
	if err != nil {
		return err
	}
	*m = Milli(time.UnixMilli(t))
	return nil
}

var (
	_ msgpack.CustomEncoder = Milli{}
	_ msgpack.CustomDecoder = (*Milli)(nil)
)
