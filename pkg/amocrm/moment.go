package amocrm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MomentNow is the literal that resolves to the current time.
const MomentNow = "now"

var momentLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Moment is a point in time that may be deferred to "now" at composition time.
type Moment struct {
	at  time.Time
	now bool
}

// Now returns a moment that resolves when it is used.
func Now() *Moment {
	return &Moment{now: true}
}

// At returns a fixed moment.
func At(t time.Time) *Moment {
	return &Moment{at: t}
}

// Unix returns a fixed moment from epoch seconds.
func Unix(sec int64) *Moment {
	return &Moment{at: time.Unix(sec, 0)}
}

// Resolve returns the concrete time, using clock for deferred moments.
func (m *Moment) Resolve(clock func() time.Time) time.Time {
	if m == nil || m.now {
		if clock == nil {
			return time.Now()
		}

		return clock()
	}

	return m.at
}

// Epoch returns the moment as epoch seconds.
func (m *Moment) Epoch(clock func() time.Time) int64 {
	return m.Resolve(clock).Unix()
}

// MarshalJSON encodes the moment as epoch seconds.
func (m *Moment) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Epoch(nil))
}

// String implements fmt.Stringer.
func (m *Moment) String() string {
	if m == nil || m.now {
		return MomentNow
	}

	return m.at.Format(time.RFC3339)
}

// ParseMoment interprets "now", epoch numbers, time.Time and the date
// layouts the API documents.
func ParseMoment(v any) (*Moment, error) {
	switch value := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: empty moment", ErrInvalidValue)
	case *Moment:
		return value, nil
	case Moment:
		return &value, nil
	case time.Time:
		return At(value), nil
	case int:
		return Unix(int64(value)), nil
	case int64:
		return Unix(value), nil
	case int32:
		return Unix(int64(value)), nil
	case float64:
		if value != math.Trunc(value) {
			return nil, fmt.Errorf("%w: fractional epoch %v", ErrInvalidValue, value)
		}

		return Unix(int64(value)), nil
	case json.Number:
		sec, err := value.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, value)
		}

		return Unix(sec), nil
	case string:
		return parseMomentString(value)
	default:
		return nil, fmt.Errorf("%w: unsupported moment type %T", ErrInvalidValue, v)
	}
}

func parseMomentString(s string) (*Moment, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty moment", ErrInvalidValue)
	}

	if strings.EqualFold(s, MomentNow) {
		return Now(), nil
	}

	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Unix(sec), nil
	}

	for _, layout := range momentLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return At(t), nil
		}
	}

	return nil, fmt.Errorf("%w: unrecognised moment %q", ErrInvalidValue, s)
}

// ToEpoch coerces a moment-like value to epoch seconds.
func ToEpoch(v any, clock func() time.Time) (int64, error) {
	m, err := ParseMoment(v)
	if err != nil {
		return 0, err
	}

	return m.Epoch(clock), nil
}
