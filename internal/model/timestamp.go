package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Timestamp normalizes the timestamp shapes the backend emits: Unix epoch
// numbers (seconds or milliseconds), Mongo extended-JSON wrappers
// ({"$date": ms} or {"$date": {"$numberLong": "ms"}}), and RFC 3339 strings.
// Everything past the wire boundary works with the embedded time.Time —
// no code deeper in the app branches on wire shape.
type Timestamp struct {
	time.Time
}

// epochMsThreshold separates second-precision from millisecond-precision
// epochs. Anything below it (~year 5138 in seconds) is read as seconds.
const epochMsThreshold = int64(1e11)

func fromEpoch(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	if n >= epochMsThreshold || n <= -epochMsThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

type extJSONDate struct {
	Date json.RawMessage `json:"$date"`
}

type extJSONLong struct {
	NumberLong string `json:"$numberLong"`
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		t.Time = time.Time{}
		return nil
	}

	// Plain epoch number.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = fromEpoch(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		t.Time = fromEpoch(int64(f))
		return nil
	}

	// RFC 3339 string.
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return err
		}
		t.Time = parsed.UTC()
		return nil
	}

	// {"$date": ...} wrapper. The inner value is either a number or
	// {"$numberLong": "<ms>"}.
	var wrapper extJSONDate
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return err
	}
	if wrapper.Date == nil {
		t.Time = time.Time{}
		return nil
	}
	if n, err := strconv.ParseInt(string(wrapper.Date), 10, 64); err == nil {
		t.Time = fromEpoch(n)
		return nil
	}
	var long extJSONLong
	if err := json.Unmarshal(wrapper.Date, &long); err == nil && long.NumberLong != "" {
		n, err := strconv.ParseInt(long.NumberLong, 10, 64)
		if err != nil {
			return err
		}
		t.Time = fromEpoch(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(wrapper.Date, &str); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

// MarshalJSON writes the normalized form: epoch milliseconds, or null for the
// zero value.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// TimestampOf wraps a time.Time for responses built locally (tests, fakes).
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}
