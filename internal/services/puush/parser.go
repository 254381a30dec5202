package puush

import (
	"fmt"
	"strings"
	"unicode"
)

// Row is one line of a puush response, split on commas.
type Row []string

// Status returns the leading field of the row, or "" for an empty row.
func (r Row) Status() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// ParseRows decodes a plaintext puush response into rows of fields.
func ParseRows(body []byte) ([]Row, error) {
	return parseRows("parse", body)
}

func parseRows(op string, body []byte) ([]Row, error) {
	for i, b := range body {
		if b > unicode.MaxASCII {
			return nil, newError(op, ErrParse, fmt.Sprintf("non-ASCII byte 0x%02x at offset %d", b, i), nil)
		}
	}

	text := strings.TrimSpace(string(body))
	lines := strings.Split(text, "\n")
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, Row(strings.Split(strings.TrimSuffix(line, "\r"), ",")))
	}
	return rows, nil
}
