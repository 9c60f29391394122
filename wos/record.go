// Package wos reads and writes Web of Science tagged export files.
//
// A file starts with a header ("FN ..." and "VR ..." lines), followed by
// records. A record is a run of field lines ("TI Deep learning for"), each
// optionally followed by continuation lines indented by three or more
// spaces, and ends with a line containing "ER". The body ends with "EF".
//
// Parsing is lenient: lines that match none of these shapes are ignored
// rather than rejected, so exports with vendor quirks or unknown tags still
// yield their records. A record that is not terminated by "ER" before "EF"
// or the end of the text is dropped, as is an "ER" without any preceding
// field. Both cases are counted in Diagnostics.
//
// Every record keeps its source lines verbatim. The writer emits those
// lines, not an encoding of the field map, so records round-trip byte for
// byte.
package wos

import (
	"sort"
	"strings"

	"github.com/woskit/woskit/dateutil"
)

// Field tags the pipeline looks at.
const (
	TagLanguage        = "LA"
	TagDocumentType    = "DT"
	TagPublicationYear = "PY"
	TagTitle           = "TI"
	TagDOI             = "DI"
)

// Record is a single bibliographic entry. A Record is sealed by the parser
// and immutable afterwards.
type Record struct {
	fields map[string]string
	raw    string
}

// Get returns the value for a tag. Continuation lines are joined by "\n".
func (r *Record) Get(tag string) (string, bool) {
	v, ok := r.fields[tag]
	return v, ok
}

// Tags returns the field tags in lexicographic order.
func (r *Record) Tags() []string {
	tags := make([]string, 0, len(r.fields))
	for k := range r.fields {
		tags = append(tags, k)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of distinct fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Raw returns the source lines of the record, from the first field line
// through the terminator line, joined by "\n".
func (r *Record) Raw() string {
	return r.raw
}

// Language returns the trimmed language label, if the record has one.
func (r *Record) Language() (string, bool) {
	v, ok := r.fields[TagLanguage]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// DocumentType returns the trimmed document type, or the empty string.
func (r *Record) DocumentType() string {
	return strings.TrimSpace(r.fields[TagDocumentType])
}

// PublicationYear returns the year from the PY field.
func (r *Record) PublicationYear() (int, bool) {
	return dateutil.Year(r.fields[TagPublicationYear])
}

// DocumentClass groups document types the way bibliometric reports do.
type DocumentClass int

const (
	ClassOther DocumentClass = iota
	ClassArticle
	ClassReview
)

// Classify maps a DT value to a DocumentClass. "Article; Proceedings Paper"
// counts as an article, "Review; Early Access" as a review.
func Classify(documentType string) DocumentClass {
	switch {
	case strings.Contains(documentType, "Article"):
		return ClassArticle
	case strings.Contains(documentType, "Review"):
		return ClassReview
	default:
		return ClassOther
	}
}
