package wos

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/woskit/woskit/xio"
)

const (
	// DefaultHeader is used when a file carries no header of its own.
	DefaultHeader Header = "FN Clarivate Analytics Web of Science\nVR 1.0\n"

	// RecordEnd terminates a record, FileEnd terminates the body.
	RecordEnd = "ER"
	FileEnd   = "EF"

	bom           = "\ufeff"
	continuation  = "   "
	lineSeparator = "\n"
)

var (
	fieldLine    = regexp.MustCompile(`^([A-Z][A-Z0-9])\s+(.*)$`)
	headerPrefix = []string{"FN ", "VR "}
)

// Header is the text block before the first record, every line followed by
// a line break.
type Header string

func (h Header) String() string {
	return string(h)
}

// Diagnostics counts input that did not make it into a record.
type Diagnostics struct {
	// EmptyRecords counts terminators without any field before them.
	EmptyRecords int `json:"empty_records"`
	// TruncatedRecords counts a record still open at "EF" or at the end of
	// the text; it is at most one per file.
	TruncatedRecords int `json:"truncated_records"`
}

// Dropped returns the number of record candidates not returned.
func (d Diagnostics) Dropped() int {
	return d.EmptyRecords + d.TruncatedRecords
}

// File is the result of parsing a tagged export.
type File struct {
	Header      Header
	Records     []*Record
	Diagnostics Diagnostics
}

// ReadFile reads and parses a, possibly compressed, file. The file is
// closed before parsing starts.
func ReadFile(filename string) (*File, error) {
	b, err := xio.ReadAll(filename)
	if err != nil {
		return nil, fmt.Errorf("wos: read %s: %w", filename, err)
	}
	return Parse(string(b)), nil
}

// Parse scans a whole file in a single pass. It does not fail: lines that
// are neither header, field, continuation nor terminator are ignored.
func Parse(text string) *File {
	text = strings.TrimPrefix(text, bom)
	var (
		lines = strings.Split(text, lineSeparator)
		file  = &File{Header: DefaultHeader}
		hdr   strings.Builder
		i     int
	)
	for ; i < len(lines) && isHeaderLine(lines[i]); i++ {
		hdr.WriteString(lines[i])
		hdr.WriteString(lineSeparator)
	}
	if hdr.Len() > 0 {
		file.Header = Header(hdr.String())
	}
	var s scanner
	for _, line := range lines[i:] {
		if !s.scan(line) {
			break
		}
	}
	s.finish()
	file.Records = s.records
	file.Diagnostics = s.diag
	return file
}

func isHeaderLine(line string) bool {
	for _, p := range headerPrefix {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// scanner holds the per-record state while walking lines.
type scanner struct {
	tag     string   // currently open field, empty if none
	value   []string // value lines of the open field
	raw     []string // source lines of the current record
	fields  map[string]string
	records []*Record
	diag    Diagnostics
}

// scan consumes a single line and reports whether scanning should go on.
func (s *scanner) scan(line string) bool {
	switch strings.TrimSpace(line) {
	case RecordEnd:
		s.commit()
		if len(s.fields) > 0 {
			s.raw = append(s.raw, line)
			s.records = append(s.records, &Record{
				fields: s.fields,
				raw:    strings.Join(s.raw, lineSeparator),
			})
		} else {
			s.diag.EmptyRecords++
		}
		s.reset()
		return true
	case FileEnd:
		return false
	}
	if m := fieldLine.FindStringSubmatch(line); m != nil {
		s.commit()
		s.tag = m[1]
		s.value = append(s.value, m[2])
		s.raw = append(s.raw, line)
		return true
	}
	if s.tag != "" && strings.HasPrefix(line, continuation) {
		s.value = append(s.value, strings.TrimSpace(line))
		s.raw = append(s.raw, line)
	}
	return true
}

// commit stores the open field, overwriting an earlier value for the tag.
func (s *scanner) commit() {
	if s.tag == "" {
		return
	}
	if s.fields == nil {
		s.fields = make(map[string]string)
	}
	s.fields[s.tag] = strings.Join(s.value, lineSeparator)
	s.tag = ""
	s.value = nil
}

func (s *scanner) reset() {
	s.tag = ""
	s.value = nil
	s.raw = nil
	s.fields = nil
}

// finish discards a record that was never terminated.
func (s *scanner) finish() {
	if s.tag != "" || len(s.fields) > 0 {
		s.diag.TruncatedRecords++
	}
	s.reset()
}
