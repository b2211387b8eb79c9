package clone

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

// TransferStats is a snapshot of fetch progress as reported by the remote.
type TransferStats struct {
	Stage    string
	Received int
	Total    int
	Percent  int
}

// StageDone marks the final event sent once the fetch has completed.
const StageDone = "done"

// "Receiving objects:  33% (1/3)" and "Counting objects: 100% (3/3), done."
var progressLine = regexp.MustCompile(`^\s*([^:]+):\s+(\d+)%\s+\((\d+)/(\d+)\)`)

// progressWriter turns sideband progress text into TransferStats events.
// Lines are terminated by either '\r' or '\n'.
type progressWriter struct {
	fn   func(TransferStats)
	buf  []byte
	last TransferStats
}

func newProgressWriter(fn func(TransferStats)) *progressWriter {
	return &progressWriter{fn: fn}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexAny(w.buf, "\r\n")
		if i < 0 {
			break
		}
		w.line(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *progressWriter) line(s string) {
	stats, ok := parseProgressLine(s)
	if !ok || stats == w.last {
		return
	}
	w.last = stats
	if w.fn != nil {
		w.fn(stats)
	}
}

func parseProgressLine(s string) (TransferStats, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "remote: ")
	m := progressLine.FindStringSubmatch(s)
	if m == nil {
		return TransferStats{}, false
	}
	percent, err1 := strconv.Atoi(m[2])
	received, err2 := strconv.Atoi(m[3])
	total, err3 := strconv.Atoi(m[4])
	if err1 != nil || err2 != nil || err3 != nil {
		return TransferStats{}, false
	}
	return TransferStats{
		Stage:    strings.TrimSpace(m[1]),
		Received: received,
		Total:    total,
		Percent:  percent,
	}, true
}

// finish flushes a trailing partial line and reports the final object count.
func (w *progressWriter) finish(objects int) {
	if len(w.buf) > 0 {
		w.line(string(w.buf))
		w.buf = nil
	}
	if w.fn != nil {
		w.fn(TransferStats{Stage: StageDone, Received: objects, Total: objects, Percent: 100})
	}
}
