// Package ingest turns uploaded contact lists into raw records with
// canonical field names.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"leadclean/internal"
	"leadclean/internal/util"
)

const (
	TypeCSV  = "csv"
	TypeXLSX = "xlsx"
	TypeHTML = "html"
	TypeEML  = "eml"
)

// DetectType guesses the input type from the file extension.
func DetectType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return TypeCSV
	case ".xlsx":
		return TypeXLSX
	case ".html", ".htm":
		return TypeHTML
	case ".eml":
		return TypeEML
	default:
		return ""
	}
}

// ReadFile reads the contact list at path. An empty inputType is detected
// from the extension.
func ReadFile(inputType, path string) ([]internal.RawRecord, error) {
	if inputType == "" {
		inputType = DetectType(path)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	return Read(inputType, blob)
}

func Read(inputType string, blob []byte) ([]internal.RawRecord, error) {
	switch strings.ToLower(inputType) {
	case TypeCSV:
		return parseCSV(blob)
	case TypeXLSX:
		return parseXLSX(blob)
	case TypeHTML:
		return parseHTMLTable(string(decodeText(blob)))
	case TypeEML:
		return parseEML(blob)
	default:
		return nil, eris.Errorf("ingest: unsupported input type: %q", inputType)
	}
}

// decodeText strips a UTF-8 BOM and decodes non-UTF-8 input as Windows-1252,
// the usual encoding of spreadsheet CSV exports.
func decodeText(blob []byte) []byte {
	blob = bytes.TrimPrefix(blob, []byte("\xEF\xBB\xBF"))
	if utf8.Valid(blob) {
		return blob
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(blob)
	if err != nil {
		return blob
	}
	return decoded
}

func parseCSV(blob []byte) ([]internal.RawRecord, error) {
	text := decodeText(blob)
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if sep := sniffSeparator(text); sep != ',' {
		r.Comma = sep
	}

	rows := [][]string{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: parse csv")
		}
		rows = append(rows, row)
	}
	return rowsToRecords(rows, internal.SourceCSV), nil
}

// sniffSeparator picks ';' or tab when the header line uses them instead of commas.
func sniffSeparator(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, sep := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(sep))); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

func parseXLSX(content []byte) ([]internal.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		records := rowsToRecords(rows, internal.SourceXLSX)
		if len(records) > 0 {
			return records, nil
		}
	}
	return []internal.RawRecord{}, nil
}

func parseHTMLTable(html string) ([]internal.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "ingest: parse html")
	}

	out := []internal.RawRecord{}
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := [][]string{}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := []string{}
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			rows = append(rows, cells)
		})
		if len(rows) < 2 {
			return true
		}
		out = rowsToRecords(rows, internal.SourceHTML)
		return len(out) == 0
	})
	return out, nil
}

// parseEML reads a contact list mailed as an attachment. CSV and XLSX
// attachments are tried first, then a table in the HTML body.
func parseEML(raw []byte) ([]internal.RawRecord, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read eml")
	}

	for _, att := range env.Attachments {
		var (
			records []internal.RawRecord
			err     error
		)
		switch DetectType(att.FileName) {
		case TypeCSV:
			records, err = parseCSV(att.Content)
		case TypeXLSX:
			records, err = parseXLSX(att.Content)
		default:
			continue
		}
		if err != nil || len(records) == 0 {
			continue
		}
		for i := range records {
			records[i].Source = internal.SourceEmailEML
		}
		return records, nil
	}

	if env.HTML != "" {
		records, err := parseHTMLTable(env.HTML)
		if err != nil {
			return nil, err
		}
		for i := range records {
			records[i].Source = internal.SourceEmailEML
		}
		return records, nil
	}
	return []internal.RawRecord{}, nil
}

// rowsToRecords treats the first row naming a known column as the header.
// Rows with every cell empty are dropped; Row numbers count data rows from 1.
func rowsToRecords(rows [][]string, source internal.RecordSource) []internal.RawRecord {
	headerIdx := -1
	for i, row := range rows {
		if hasKnownColumn(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return []internal.RawRecord{}
	}
	headers := ResolveHeaders(rows[headerIdx])

	out := make([]internal.RawRecord, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		rec := internal.RawRecord{Row: len(out) + 1, Source: source}
		for i, value := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			rec.Fields = append(rec.Fields, internal.Field{Name: headers[i], Value: value})
		}
		if rec.Empty() {
			continue
		}
		out = append(out, rec)
	}
	return out
}
