package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"leadclean/internal"
	"leadclean/internal/pipeline"
)

const (
	AllSheet = "All"
	utf8BOM  = "\ufeff"
)

var baseHeaders = []string{
	"row", "first_name", "last_name", "email", "email_valid", "email_disposable",
	"phone", "phone_valid", "company", "job_title",
	"quality_score", "is_duplicate", "duplicate_group_id", "list", "changes",
}

type Options struct {
	// DropDuplicates leaves flagged duplicates out of every output.
	DropDuplicates bool
}

// Files lists what WriteAll produced.
type Files struct {
	XLSX string
	JSON string
	CSV  []string
}

// WriteAll writes the workbook, per-list CSVs and the JSON dump into dir,
// naming every file after base.
func WriteAll(res pipeline.Result, dir, base string, opts Options) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, eris.Wrapf(err, "export: create %s", dir)
	}
	out := Files{
		XLSX: filepath.Join(dir, base+".xlsx"),
		JSON: filepath.Join(dir, base+".json"),
	}
	if err := WriteXLSX(res, out.XLSX, opts); err != nil {
		return Files{}, err
	}
	csvFiles, err := WriteCSV(res, dir, base, opts)
	if err != nil {
		return Files{}, err
	}
	out.CSV = csvFiles
	if err := WriteJSON(res, out.JSON, opts); err != nil {
		return Files{}, err
	}
	return out, nil
}

// WriteXLSX writes one "All" sheet followed by a "List N" sheet per list.
func WriteXLSX(res pipeline.Result, outputPath string, opts Options) error {
	all := visible(res.Contacts, opts)
	headers := Headers(all)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), AllSheet); err != nil {
		return eris.Wrap(err, "export: rename sheet")
	}
	if err := writeSheet(f, AllSheet, headers, all); err != nil {
		return err
	}
	for i, list := range res.Lists(opts.DropDuplicates) {
		name := ListName(i)
		if _, err := f.NewSheet(name); err != nil {
			return eris.Wrapf(err, "export: add sheet %s", name)
		}
		if err := writeSheet(f, name, headers, list); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", outputPath)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return eris.Wrapf(err, "export: save %s", outputPath)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, contacts []internal.Contact) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return eris.Wrapf(err, "export: %s header", sheet)
		}
	}
	for i, c := range contacts {
		for col, value := range record(c, headers) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return eris.Wrapf(err, "export: %s row %d", sheet, i+2)
			}
		}
	}
	return nil
}

// WriteCSV writes one BOM-prefixed CSV per list and returns the paths.
func WriteCSV(res pipeline.Result, dir, base string, opts Options) ([]string, error) {
	headers := Headers(visible(res.Contacts, opts))
	var paths []string
	for i, list := range res.Lists(opts.DropDuplicates) {
		path := filepath.Join(dir, fmt.Sprintf("%s_list%d.csv", base, i+1))
		if err := writeCSVFile(path, headers, list); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, headers []string, contacts []internal.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	for _, c := range contacts {
		values := record(c, headers)
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "export: write %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "export: flush %s", path)
	}
	return nil
}

type jsonContact struct {
	internal.Contact
	Extra map[string]string `json:"extra,omitempty"`
}

type jsonDump struct {
	Stats    internal.Stats `json:"stats"`
	Contacts []jsonContact  `json:"contacts"`
}

func WriteJSON(res pipeline.Result, path string, opts Options) error {
	dump := jsonDump{Stats: res.Stats, Contacts: []jsonContact{}}
	for _, c := range visible(res.Contacts, opts) {
		jc := jsonContact{Contact: c}
		if len(c.Extra) > 0 {
			jc.Extra = make(map[string]string, len(c.Extra))
			for _, f := range c.Extra {
				jc.Extra[f.Name] = f.Value
			}
		}
		dump.Contacts = append(dump.Contacts, jc)
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// Headers returns the fixed columns followed by every pass-through column
// in order of first appearance.
func Headers(contacts []internal.Contact) []string {
	headers := append([]string(nil), baseHeaders...)
	seen := map[string]bool{}
	for _, h := range baseHeaders {
		seen[h] = true
	}
	for _, c := range contacts {
		for _, f := range c.Extra {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			headers = append(headers, f.Name)
		}
	}
	return headers
}

func ListName(i int) string {
	return fmt.Sprintf("List %d", i+1)
}

func visible(contacts []internal.Contact, opts Options) []internal.Contact {
	if !opts.DropDuplicates {
		return contacts
	}
	out := make([]internal.Contact, 0, len(contacts))
	for _, c := range contacts {
		if !c.IsDuplicate {
			out = append(out, c)
		}
	}
	return out
}

func record(c internal.Contact, headers []string) []any {
	values := []any{
		c.Row, c.FirstName, c.LastName, c.Email, c.EmailValid, c.EmailDisposable,
		c.Phone, c.PhoneValid, c.Company, c.JobTitle,
		c.QualityScore, c.IsDuplicate, c.DuplicateGroupID, c.ListAssignment + 1, changes(c),
	}
	for _, h := range headers[len(baseHeaders):] {
		values = append(values, extraValue(c, h))
	}
	return values
}

func extraValue(c internal.Contact, name string) string {
	for _, f := range c.Extra {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// changes renders the change log as "field, field (inferred)".
func changes(c internal.Contact) string {
	fields := make([]string, 0, len(c.ChangeLog))
	for field := range c.ChangeLog {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for i, field := range fields {
		if c.ChangeLog[field].Kind == internal.ChangeInferred {
			fields[i] = field + " (inferred)"
		}
	}
	return strings.Join(fields, ", ")
}
