// Package id generates identifiers that sort by creation time.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a 26-character ULID for the current time.
func NewULID() string {
	return ULIDAt(time.Now())
}

// ULIDAt returns a ULID whose timestamp component is t.
// The first 48 bits hold Unix milliseconds, the remaining 80 are random.
func ULIDAt(t time.Time) string {
	var raw [16]byte
	binary.BigEndian.PutUint64(raw[:8], uint64(t.UnixMilli())<<16)
	_, _ = rand.Read(raw[6:])

	hi := binary.BigEndian.Uint64(raw[:8])
	lo := binary.BigEndian.Uint64(raw[8:])

	var out [26]byte
	// 128 bits as 26 base32 digits, most significant first; the top digit
	// carries only 3 bits.
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// Time extracts the timestamp from a ULID. ok is false for malformed input.
func Time(ulid string) (time.Time, bool) {
	if len(ulid) != 26 {
		return time.Time{}, false
	}
	var ms uint64
	for i := range 10 {
		v := decode(ulid[i])
		if v < 0 {
			return time.Time{}, false
		}
		ms = ms<<5 | uint64(v)
	}
	// The first 10 digits hold two zero padding bits and the 48-bit time.
	return time.UnixMilli(int64(ms)), true
}

func decode(c byte) int {
	for i := range len(crockford) {
		if crockford[i] == c {
			return i
		}
	}
	return -1
}
