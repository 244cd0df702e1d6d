package domain

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnparsableInput is returned when the input cannot be read as a delimited
// table at all. No analysis is produced for such input.
var ErrUnparsableInput = errors.New("unparsable input")

// Table is a header plus rows of raw cell text. Row cells are aligned with
// Columns; a cell is missing when IsMissing reports true for it.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// ParseOptions controls how raw bytes are turned into a Table.
type ParseOptions struct {
	// Delimiter forces the field separator. Zero means sniff from the header
	// line among ',', ';', '\t' and '|', falling back to ','.
	Delimiter rune
}

// NewTable builds a Table from already split cells. Short rows are padded
// with empty (missing) cells.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: columns,
		Rows:    make([][]string, len(rows)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for i, r := range rows {
		if len(r) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, r)
			r = padded
		}
		t.Rows[i] = r
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether a column with exactly this name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns every value of the named column, or false if absent.
func (t *Table) Column(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		values[r] = row[i]
	}
	return values, true
}

// ParseTable reads delimited text with a header row. Any failure to tokenize
// the input is reported as ErrUnparsableInput.
func ParseTable(r io.Reader, opts ParseOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	data, err = decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnparsableInput, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: no columns to parse", ErrUnparsableInput)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrUnparsableInput, err)
	}
	columns := dedupeHeaders(header)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparsableInput, err)
		}
		if len(rec) > len(columns) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d",
				ErrUnparsableInput, line, len(columns), len(rec))
		}
		rows = append(rows, rec)
	}

	return NewTable(columns, rows), nil
}

// decodeText strips a UTF-8 byte order mark and converts input that is not
// valid UTF-8 from Windows-1252, the usual encoding of spreadsheet exports.
func decodeText(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return charmap.Windows1252.NewDecoder().Bytes(data)
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sniffDelimiter picks the candidate separator that occurs most often in the
// header line, outside quotes.
func sniffDelimiter(data []byte) rune {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()

	counts := map[rune]int{}
	inQuotes := false
	for _, c := range string(line) {
		switch c {
		case '"':
			inQuotes = !inQuotes
		case ',', ';', '\t', '|':
			if !inQuotes {
				counts[c]++
			}
		}
	}

	best, bestCount := ',', 0
	for _, c := range []rune{',', ';', '\t', '|'} {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// dedupeHeaders names blank headers "Unnamed: <i>" and suffixes repeated
// names with ".1", ".2", ... so every column can be addressed by name. Other
// headers are kept exactly as written, surrounding whitespace included.
func dedupeHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(h) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		taken[name] = true
		out[i] = name
	}
	for i, name := range out {
		n, dup := seen[name]
		if !dup {
			seen[name] = 1
			continue
		}
		candidate := name + "." + strconv.Itoa(n)
		for taken[candidate] {
			n++
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[name] = n + 1
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// naTokens are cell values treated as missing, in addition to blanks.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// IsMissing reports whether a raw cell should be treated as absent.
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := naTokens[v]
	return ok
}
