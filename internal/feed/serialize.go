package feed

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
)

// Output formats. Unknown format strings fall back to JSON.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
	FormatXML  = "xml"
)

// Content types per format.
const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeTSV  = "text/tab-separated-values; charset=utf-8"
	ContentTypeXML  = "application/xml; charset=utf-8"
)

// Serialize encodes an ordered row list into the requested wire format and
// returns the payload together with its content type. An empty row list
// yields an empty payload for csv/tsv and an empty container for json/xml.
func Serialize(rows []Row, format string) (payload []byte, contentType string) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return []byte(toCSV(rows)), ContentTypeCSV
	case FormatTSV:
		return []byte(toTSV(rows)), ContentTypeTSV
	case FormatXML:
		return []byte(toXML(rows)), ContentTypeXML
	default:
		return []byte(toJSON(rows)), ContentTypeJSON
	}
}

// toJSON keeps slashes and non-ASCII text as literal UTF-8.
func toJSON(rows []Row) string {
	if rows == nil {
		rows = []Row{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// toCSV takes the header from the fields present on the first row; every
// subsequent row is emitted in that same key order. List values are joined
// with "," before encoding.
func toCSV(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	header := rows[0].Fields()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(header)
	record := make([]string, len(header))
	for i := range rows {
		for j, name := range header {
			record[j], _ = rows[i].Field(name)
		}
		w.Write(record)
	}
	w.Flush()
	return buf.String()
}

// toTSV shares the CSV column model but joins values with literal tabs and
// performs no quoting.
func toTSV(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	header := rows[0].Fields()

	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	record := make([]string, len(header))
	for i := range rows {
		for j, name := range header {
			record[j], _ = rows[i].Field(name)
		}
		b.WriteString(strings.Join(record, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// toXML renders <products> with one <product> per row and one child element
// per present field; text content is HTML-escaped and lists are joined with
// "," before escaping.
func toXML(rows []Row) string {
	if len(rows) == 0 {
		return "<products/>"
	}
	var b strings.Builder
	b.WriteString("<products>")
	for i := range rows {
		b.WriteString("<product>")
		for _, f := range rowFields {
			v, ok := f.value(&rows[i])
			if !ok {
				continue
			}
			b.WriteByte('<')
			b.WriteString(f.name)
			b.WriteByte('>')
			xmlEscaper.WriteString(&b, v)
			b.WriteString("</")
			b.WriteString(f.name)
			b.WriteByte('>')
		}
		b.WriteString("</product>")
	}
	b.WriteString("</products>")
	return b.String()
}
