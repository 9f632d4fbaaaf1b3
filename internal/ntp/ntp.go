// Package ntp converts corrosion's fixed-point 64-bit timestamps to and
// from calendar time.
//
// Every time-valued field in corrosion's output (member ts, last_sync_ts)
// is one unsigned 64-bit integer: the high 32 bits are whole seconds since
// the Unix epoch, the low 32 bits are a fraction of a second over 2^32.
// The native fractional resolution (~0.23ns) is truncated to microseconds
// on decode; Encode→Decode is therefore exact at microsecond alignment,
// while Decode→Encode of an arbitrary packed value is lossy below that.
package ntp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrInvalidTimestamp reports a value that cannot be interpreted as a
// packed timestamp: not integer-shaped, negative, or outside uint64 range.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

const fracBits = 32

// Decode unpacks a fixed-point timestamp into UTC calendar time. The
// fractional half is truncated to microsecond precision. Decode is total:
// the seconds half is at most 32 bits, which is always inside time.Unix's
// range, so range errors belong to ParsePacked.
func Decode(packed uint64) time.Time {
	seconds := packed >> fracBits
	fraction := packed & math.MaxUint32
	micros := fraction * 1_000_000 >> fracBits
	return time.Unix(int64(seconds), int64(micros)*int64(time.Microsecond)).UTC()
}

// Encode packs t into the fixed-point wire format. Sub-microsecond
// precision in t is discarded. The fraction rounds up to the next
// representable value so that Decode's truncation lands back on the same
// microsecond; since microseconds stay below 1e6 the fraction never
// overflows its 32 bits. Times before the Unix epoch are outside the
// format's range and clamp to zero seconds.
func Encode(t time.Time) uint64 {
	seconds := t.Unix()
	if seconds < 0 {
		seconds = 0
	}
	micros := uint64(t.Nanosecond() / int(time.Microsecond))
	fraction := (micros<<fracBits + 999_999) / 1_000_000
	return uint64(seconds)<<fracBits | fraction
}

// ParsePacked extracts a packed timestamp from whatever integer shape a
// decoded JSON record carries: json.Number, the native integer types, or a
// float64 with an integral value. Anything else fails with
// ErrInvalidTimestamp.
func ParsePacked(v any) (uint64, error) {
	switch n := v.(type) {
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, n.String())
		}
		return u, nil
	case uint64:
		return n, nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrInvalidTimestamp, n)
		}
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrInvalidTimestamp, n)
		}
		return uint64(n), nil
	case float64:
		if n < 0 || n != math.Trunc(n) || n >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTimestamp, n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("%w: %T is not integer-shaped", ErrInvalidTimestamp, v)
	}
}

// Format renders a packed timestamp for display. It never fails outward:
// nil formats as "Never", anything unparsable as "Invalid timestamp",
// everything else as "YYYY-MM-DD HH:MM:SS UTC".
func Format(v any) string {
	if v == nil {
		return "Never"
	}
	packed, err := ParsePacked(v)
	if err != nil {
		return "Invalid timestamp"
	}
	return Decode(packed).Format("2006-01-02 15:04:05") + " UTC"
}

// DefaultWindowSeconds is the recency window used when the caller does not
// configure one.
const DefaultWindowSeconds = 300

// IsRecent reports whether packed decodes to an instant within
// windowSeconds of the current wall clock. The comparison is on whole
// elapsed seconds (truncated), and the clock is read exactly once per call.
func IsRecent(packed uint64, windowSeconds int64) bool {
	return isRecentAt(packed, windowSeconds, timeNow())
}

// isRecentAt is the deterministic core of IsRecent: now is threaded in
// explicitly so tests never touch the system clock.
func isRecentAt(packed uint64, windowSeconds int64, now time.Time) bool {
	elapsed := int64(now.Sub(Decode(packed)) / time.Second)
	return elapsed <= windowSeconds
}

// timeNow is a package-level variable for testability.
var timeNow = time.Now
