package wos

import (
	"bufio"
	"fmt"
	"io"

	"github.com/woskit/woskit/xio"
)

// Write serializes a header and records: byte order mark, header, a blank
// line, every record's raw text followed by a blank line, and "EF". An empty
// header is replaced by DefaultHeader.
func Write(w io.Writer, header Header, records []*Record) error {
	if header == "" {
		header = DefaultHeader
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(bom)
	bw.WriteString(header.String())
	bw.WriteString(lineSeparator)
	for _, r := range records {
		bw.WriteString(r.Raw())
		bw.WriteString(lineSeparator + lineSeparator)
	}
	bw.WriteString(FileEnd + lineSeparator)
	return bw.Flush()
}

// WriteFile writes header and records to filename. The file is compressed
// according to its suffix and only appears once completely written.
func WriteFile(filename string, header Header, records []*Record) error {
	w, err := xio.Create(filename)
	if err != nil {
		return fmt.Errorf("wos: create %s: %w", filename, err)
	}
	if err := Write(w, header, records); err != nil {
		_ = w.Abort()
		return fmt.Errorf("wos: write %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("wos: write %s: %w", filename, err)
	}
	return nil
}
