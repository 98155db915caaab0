// Package ntp contains functions to encode and decode timestamps to/from NTP format.
package ntp

import (
	"time"
)

// seconds between 1900-01-01 (NTP epoch) and 1970-01-01 (Unix epoch).
const unixOffset = 2208988800

// Encode encodes a timestamp in 64-bit NTP format.
// Fractional seconds are rounded to the nearest 1/2^32 second.
// Specification: RFC5905, section 6
func Encode(t time.Time) uint64 {
	secs := uint64(t.Unix() + unixOffset)
	nanos := uint64(t.Nanosecond())

	// nanos < 1e9, therefore nanos << 32 does not overflow
	frac := ((nanos << 32) + 500000000) / 1000000000

	return secs<<32 | frac
}

// Decode decodes a timestamp from 64-bit NTP format.
// Fractional seconds are rounded to the nearest nanosecond.
// Specification: RFC5905, section 6
func Decode(v uint64) time.Time {
	secs := int64(v>>32) - unixOffset
	nanos := ((v&0xFFFFFFFF)*1000000000 + (1 << 31)) >> 32
	return time.Unix(secs, int64(nanos))
}
