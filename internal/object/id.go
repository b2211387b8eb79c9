package object

import (
	"encoding/hex"
	"fmt"
)

const (
	IDSize    = 20
	IDHexSize = IDSize * 2
)

// ID is the binary name of an object in the database.
type ID [IDSize]byte

var ZeroID ID

// ParseID decodes a 40 character hex string. Upper and lower case digits are
// both accepted.
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) != IDHexSize {
		return id, fmt.Errorf("object id %q: want %d hex characters, got %d", s, IDHexSize, len(s))
	}
	if !decodeHex(id[:], []byte(s)) {
		return ZeroID, fmt.Errorf("object id %q: invalid hex", s)
	}
	return id, nil
}

// MustParseID is ParseID for constants; it panics on error.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first seven hex digits.
func (id ID) Short() string {
	return id.String()[:7]
}

func (id ID) IsZero() bool {
	return id == ZeroID
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// decodeHex fills dst from exactly 2*len(dst) hex digits in src.
func decodeHex(dst []byte, src []byte) bool {
	if len(src) != 2*len(dst) {
		return false
	}
	for i := range dst {
		hi, ok := fromHexChar(src[2*i])
		if !ok {
			return false
		}
		lo, ok := fromHexChar(src[2*i+1])
		if !ok {
			return false
		}
		dst[i] = hi<<4 | lo
	}
	return true
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
