package object

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Time is a signature timestamp: seconds since the epoch plus the author's
// UTC offset in minutes.
type Time struct {
	Seconds int64
	Offset  int
}

// Time converts t to a time.Time in a fixed zone matching the offset.
func (t Time) Time() time.Time {
	return time.Unix(t.Seconds, 0).In(time.FixedZone(formatOffset(t.Offset), t.Offset*60))
}

func (t Time) IsZero() bool {
	return t.Seconds == 0 && t.Offset == 0
}

type Signature struct {
	Name  string
	Email string
	When  Time
}

// String formats the signature the way it is stored in an object header.
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Seconds, formatOffset(s.When.Offset))
}

const maxOffsetHours = 14

// ParseSignature parses "<header><name> <<email>> <seconds> <±HHMM><term>" at
// the start of buf. Only a missing terminator, a header mismatch or a missing
// <email> pair are errors; a timestamp or zone that cannot be understood leaves
// When zeroed.
func ParseSignature(buf []byte, header string, term byte) (Signature, []byte, error) {
	var sig Signature
	lineEnd := bytes.IndexByte(buf, term)
	if lineEnd < 0 {
		return sig, buf, signatureError(len(buf), "missing line terminator")
	}
	line := buf[:lineEnd]
	if len(header) >= len(line) || !bytes.HasPrefix(line, []byte(header)) {
		return sig, buf, signatureError(0, "expected "+quotePrefix(header))
	}
	line = line[len(header):]

	emailStart := bytes.IndexByte(line, '<')
	if emailStart < 0 {
		return sig, buf, signatureError(len(header), "missing '<' before email")
	}
	emailLen := bytes.IndexByte(line[emailStart+1:], '>')
	if emailLen < 0 {
		return sig, buf, signatureError(len(header)+emailStart, "missing '>' after email")
	}
	emailEnd := emailStart + 1 + emailLen

	sig.Name = string(bytes.TrimSpace(line[:emailStart]))
	sig.Email = string(bytes.TrimSpace(line[emailStart+1 : emailEnd]))
	sig.When, _ = parseTrailingTime(line[emailEnd+1:])
	return sig, buf[lineEnd+1:], nil
}

// parseTrailingTime reads "<seconds>" or "<seconds> <±HHMM>" from the last
// fields of tail. Free text before those fields is ignored.
func parseTrailingTime(tail []byte) (Time, bool) {
	fields := bytes.Fields(tail)
	if len(fields) == 0 {
		return Time{}, false
	}
	last := fields[len(fields)-1]
	if last[0] != '+' && last[0] != '-' {
		seconds, ok := parseSeconds(last)
		if !ok {
			return Time{}, false
		}
		return Time{Seconds: seconds}, true
	}
	if len(fields) < 2 {
		return Time{}, false
	}
	seconds, ok := parseSeconds(fields[len(fields)-2])
	if !ok {
		return Time{}, false
	}
	offset, ok := parseOffset(last)
	if !ok {
		return Time{}, false
	}
	return Time{Seconds: seconds, Offset: offset}, true
}

// parseSeconds accepts an optional leading '-' for times before the epoch.
func parseSeconds(field []byte) (int64, bool) {
	digits := field
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if !allDigits(digits) {
		return 0, false
	}
	seconds, err := strconv.ParseInt(string(field), 10, 64)
	if err != nil {
		return 0, false
	}
	return seconds, true
}

func parseOffset(field []byte) (int, bool) {
	if len(field) != 5 || !allDigits(field[1:]) {
		return 0, false
	}
	hours := int(field[1]-'0')*10 + int(field[2]-'0')
	mins := int(field[3]-'0')*10 + int(field[4]-'0')
	if hours > maxOffsetHours || mins > 59 {
		return 0, false
	}
	offset := hours*60 + mins
	if field[0] == '-' {
		offset = -offset
	}
	return offset, true
}

func allDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d%02d", sign, minutes/60, minutes%60)
}
