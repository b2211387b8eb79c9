package object

import "bytes"

// ParseHeaderID parses a "<prefix><40 hex digits>\n" line at the start of buf
// and returns the id together with the bytes following the newline. The
// prefix is matched literally, so it must include any separating space.
func ParseHeaderID(buf []byte, prefix string) (ID, []byte, error) {
	var id ID
	lineLen := len(prefix) + IDHexSize + 1
	if len(buf) < lineLen {
		return id, buf, headerError(0, "line too short")
	}
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return id, buf, headerError(0, "expected "+quotePrefix(prefix))
	}
	if buf[lineLen-1] != '\n' {
		return id, buf, headerError(lineLen-1, "expected newline after object id")
	}
	if !decodeHex(id[:], buf[len(prefix):lineLen-1]) {
		return ZeroID, buf, headerError(len(prefix), "invalid object id")
	}
	return id, buf[lineLen:], nil
}

func quotePrefix(prefix string) string {
	return "\"" + prefix + "\""
}
