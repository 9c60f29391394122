package wos

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/woskit/woskit/xio"
)

// Tally is a quick per-file summary: records by document class, and the
// languages of all LA lines.
type Tally struct {
	Total     int      `json:"total"`
	Article   int      `json:"article"`
	Review    int      `json:"review"`
	Other     int      `json:"other"`
	Languages *Counter `json:"languages"`
}

// Add counts a single document type. An empty type only counts toward the
// total.
func (t *Tally) Add(documentType string) {
	t.Total++
	if documentType == "" {
		return
	}
	switch Classify(documentType) {
	case ClassArticle:
		t.Article++
	case ClassReview:
		t.Review++
	default:
		t.Other++
	}
}

// TallyRecords summarizes parsed records.
func TallyRecords(records []*Record) Tally {
	t := Tally{Languages: new(Counter)}
	for _, r := range records {
		t.Add(r.DocumentType())
		if lang, ok := r.Language(); ok {
			t.Languages.Add(lang)
		}
	}
	return t
}

// ReadTally streams over a tagged file line by line, without building
// records. Every "ER" line counts as a record; the most recent "DT" line
// before it determines its class. Continuation lines are not considered.
func ReadTally(r io.Reader) (Tally, error) {
	var (
		t       = Tally{Languages: new(Counter)}
		docType string
		first   = true
		br      = bufio.NewReader(r)
	)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if first {
				line = strings.TrimPrefix(line, bom)
				first = false
			}
			switch {
			case strings.HasPrefix(line, TagDocumentType+" "):
				docType = strings.TrimSpace(line[3:])
			case strings.HasPrefix(line, TagLanguage+" "):
				t.Languages.Add(strings.TrimSpace(line[3:]))
			case strings.TrimSpace(line) == RecordEnd:
				t.Add(docType)
				docType = ""
			}
		}
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return t, err
		}
	}
}

// TallyFile runs ReadTally over a, possibly compressed, file.
func TallyFile(filename string) (Tally, error) {
	f, err := xio.Open(filename)
	if err != nil {
		return Tally{}, fmt.Errorf("wos: tally %s: %w", filename, err)
	}
	defer f.Close()
	t, err := ReadTally(f)
	if err != nil {
		return t, fmt.Errorf("wos: tally %s: %w", filename, err)
	}
	return t, nil
}
