// Package attendance holds the tri-state status shared by attendance, fee and tute tracking,
// and the boundary adapter that turns loosely typed wire values into it.
package attendance

import (
	"encoding/json"
	"strings"
)

// Status is the canonical tri-state status. The zero value is Pending.
type Status uint8

const (
	Pending Status = iota
	Present
	Absent
)

// Statuses lists every valid Status.
var Statuses = []Status{Present, Absent, Pending}

var wireValues = map[Status]string{
	Present: "present",
	Absent:  "absent",
	Pending: "pending",
}

// Normalize maps any raw wire value to a Status. It never fails:
// true, "true" and "present" are Present, "absent" is Absent,
// and everything else (nil, false, "false", "pending", unknown strings, other types) is Pending.
// String comparison is case-insensitive.
func Normalize(raw interface{}) Status {
	switch v := raw.(type) {
	case nil:
		return Pending
	case Status:
		if _, ok := wireValues[v]; ok {
			return v
		}
		return Pending
	case bool:
		if v {
			return Present
		}
		return Pending
	case *bool:
		if v == nil {
			return Pending
		}
		return Normalize(*v)
	case string:
		return normalizeString(v)
	case *string:
		if v == nil {
			return Pending
		}
		return normalizeString(*v)
	case json.RawMessage:
		return normalizeJSON(v)
	default:
		return Pending
	}
}

func normalizeString(s string) Status {
	switch strings.ToLower(s) {
	case "absent":
		return Absent
	case "true", "present":
		return Present
	default:
		return Pending
	}
}

func normalizeJSON(data []byte) Status {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Pending
	}
	return Normalize(raw)
}

// WireValue returns the lowercase form sent to the update endpoints.
func (s Status) WireValue() string {
	if v, ok := wireValues[s]; ok {
		return v
	}
	return wireValues[Pending]
}

func (s Status) String() string {
	return s.WireValue()
}

// Toggled flips a fee/tute status: Present becomes Pending, anything else becomes Present.
func (s Status) Toggled() Status {
	if s == Present {
		return Pending
	}
	return Present
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.WireValue())
}

// UnmarshalJSON accepts any JSON value, including null, and normalizes it.
func (s *Status) UnmarshalJSON(data []byte) error {
	*s = normalizeJSON(data)
	return nil
}

// IsWireValue reports whether s is exactly one of the lowercase wire values.
func IsWireValue(s string) bool {
	for _, v := range wireValues {
		if v == s {
			return true
		}
	}
	return false
}
