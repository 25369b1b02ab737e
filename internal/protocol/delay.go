package protocol

import "time"

const legacyStampLayout = "20060102T15:04:05"

// ParseStamp reads an XEP-0203 (RFC 3339) or legacy XEP-0091 delay stamp.
func ParseStamp(stamp string) (time.Time, bool) {
	if stamp == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(legacyStampLayout, stamp, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
