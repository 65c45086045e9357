// Package csvimport reads spreadsheet exports into typed rows for bulk imports.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
)

const encodingSniffSize = 4096

// Parser reads a headed CSV stream row by row.
type Parser struct {
	reader    *csv.Reader
	headers   []string
	headerMap map[string]int
	line      int
}

// ParserOption configures a Parser.
type ParserOption func(*csv.Reader)

// WithDelimiter sets the field separator. Excel exports in French locales use ';'.
func WithDelimiter(d rune) ParserOption {
	return func(r *csv.Reader) { r.Comma = d }
}

// NewParser strips a UTF-8 BOM, rejects non UTF-8 input and reads the header
// row. Header names are trimmed and lowercased.
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	br := bufio.NewReaderSize(r, encodingSniffSize)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	head, err := br.Peek(encodingSniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, ErrEmptyFile
	}
	if len(head) == encodingSniffSize {
		head = trimPartialRune(head)
	}
	if !utf8.Valid(head) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(cr)
	}

	p := &Parser{reader: cr, headerMap: map[string]int{}}
	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1
	for i, h := range record {
		h = strings.ToLower(strings.TrimSpace(h))
		p.headers = append(p.headers, h)
		if h != "" {
			p.headerMap[h] = i
		}
	}
	if len(p.headerMap) == 0 {
		return nil, ErrMissingHeader
	}
	return p, nil
}

// trimPartialRune drops an incomplete rune cut off at the end of a full sniff window
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			return b
		}
	}
	return b
}

// Headers returns the normalized header names in column order.
func (p *Parser) Headers() []string {
	return p.headers
}

// Missing lists the required headers absent from the file.
func (p *Parser) Missing(required ...string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := p.headerMap[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data line keyed by header.
type Row struct {
	Line int
	data map[string]string
}

// Get returns the trimmed value of column header, or "".
func (r Row) Get(header string) string {
	return r.data[header]
}

// IsEmpty reports whether every cell is blank.
func (r Row) IsEmpty() bool {
	for _, v := range r.data {
		if v != "" {
			return false
		}
	}
	return true
}

// Next returns the next row, or io.EOF. Malformed lines come back as *RowError
// so callers can skip them and continue. A line that is not UTF-8 fails the
// whole file with ErrInvalidEncoding.
func (p *Parser) Next() (Row, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	p.line++
	if err != nil {
		return Row{}, &RowError{Line: p.line, Message: err.Error()}
	}
	for _, field := range record {
		if !utf8.ValidString(field) {
			return Row{}, fmt.Errorf("line %d: %w", p.line, ErrInvalidEncoding)
		}
	}
	row := Row{Line: p.line, data: make(map[string]string, len(p.headerMap))}
	for h, i := range p.headerMap {
		if i < len(record) {
			row.data[h] = strings.TrimSpace(record[i])
		}
	}
	return row, nil
}
