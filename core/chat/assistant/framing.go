package assistant

import (
	"bytes"
	"strings"
)

const (
	recordPrefix = "data:"
	endMessage   = "[DONE]"
)

// recordFramer splits an incoming byte stream into newline-terminated lines.
// The tail of the last chunk is carried over until its line completes, so
// multi-byte UTF-8 sequences split across chunk boundaries are reassembled
// before any text handling happens.
type recordFramer struct {
	carry []byte
}

// feed appends a chunk and returns every line completed by it.
func (f *recordFramer) feed(chunk []byte) []string {
	f.carry = append(f.carry, chunk...)

	var lines []string
	for {
		newlineIdx := bytes.IndexByte(f.carry, '\n')
		if newlineIdx < 0 {
			return lines
		}
		line := f.carry[:newlineIdx]
		f.carry = f.carry[newlineIdx+1:]
		lines = append(lines, string(bytes.TrimSuffix(line, []byte("\r"))))
	}
}

// flush returns the unterminated tail, if any. Used when the stream closes
// without a final newline.
func (f *recordFramer) flush() (string, bool) {
	if len(f.carry) == 0 {
		return "", false
	}
	line := string(bytes.TrimSuffix(f.carry, []byte("\r")))
	f.carry = nil
	return line, true
}

// payloadFromLine strips the record prefix and surrounding whitespace. The
// prefix is optional: prefix-less lines are passed through so the legacy
// raw-text path keeps working. Whitespace trimming applies to legacy lines
// too: a raw-text record keeps its interior spacing but loses leading and
// trailing spaces, so spacing across record boundaries is the server's job.
func payloadFromLine(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, recordPrefix))
}
