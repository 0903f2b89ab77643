// Package jsontime holds time types with a JSON wire representation. The
// API timestamps (thread and message created_at/updated_at fields) travel
// as Unix milliseconds, not RFC 3339 strings.
package jsontime

import (
	"encoding/json"
	"time"
)

// Milli is a time.Time whose JSON form is an integer count of Unix
// milliseconds.
type Milli time.Time

// NowEpochMilli returns the current time as a Milli.
func NowEpochMilli() Milli {
	return Milli(time.Now())
}

// Time converts back to a plain time.Time.
func (ep Milli) Time() time.Time {
	return time.Time(ep)
}

// Before reports whether ep is before t.
func (ep Milli) Before(t Milli) bool {
	return time.Time(ep).Before(time.Time(t))
}

// After reports whether ep is after t.
func (ep Milli) After(t Milli) bool {
	return time.Time(ep).After(time.Time(t))
}

// Equal reports whether ep and t are the same instant.
func (ep Milli) Equal(t Milli) bool {
	return time.Time(ep).Equal(time.Time(t))
}

// String formats the time with time.Time's default layout.
func (ep Milli) String() string {
	return time.Time(ep).String()
}

// UnmarshalJSON decodes an integer millisecond timestamp.
func (ep *Milli) UnmarshalJSON(b []byte) error {
	var t int64
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	*ep = Milli(time.UnixMilli(t))
	return nil
}

// MarshalJSON encodes the time as Unix milliseconds.
func (ep Milli) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(ep).UnixMilli())
}

// IsZero reports whether ep is the zero instant.
func (ep Milli) IsZero() bool {
	return time.Time(ep).IsZero()
}

// Sub returns the duration ep-t.
func (ep Milli) Sub(t Milli) time.Duration {
	return time.Time(ep).Sub(time.Time(t))
}

// Add returns ep shifted by d.
func (ep Milli) Add(d time.Duration) Milli {
	return Milli(time.Time(ep).Add(d))
}
