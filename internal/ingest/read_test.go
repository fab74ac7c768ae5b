package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"leadclean/internal"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestResolveHeader(t *testing.T) {
	cases := map[string]string{
		"E-Mail":         internal.FieldEmail,
		"email address":  internal.FieldEmail,
		"MAIL":           internal.FieldEmail,
		" First_Name ":   internal.FieldFirstName,
		"Surname":        internal.FieldLastName,
		"Company Name":   internal.FieldCompany,
		"Mobile Phone":   internal.FieldPhone,
		"Job Title":      internal.FieldJobTitle,
		"\ufeffemail":    internal.FieldEmail,
		"LinkedIn URL":   "LinkedIn URL",
		"  Lead  Owner ": "Lead Owner",
	}
	for in, want := range cases {
		if got := ResolveHeader(in); got != want {
			t.Fatalf("ResolveHeader(%q)=%q want %q", in, got, want)
		}
	}
}

func TestParseCSV(t *testing.T) {
	blob := []byte("\xEF\xBB\xBFFirst Name,Last Name,E-mail,Company Name,Notes\nJOHN,,john.smith@example.com,Acme,vip\n,,,,\njane,doe,JANE@EXAMPLE.COM,,\n")
	records, err := Read(TypeCSV, blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	if records[0].Get(internal.FieldEmail) != "john.smith@example.com" {
		t.Fatalf("email=%q", records[0].Get(internal.FieldEmail))
	}
	if records[0].Get(internal.FieldCompany) != "Acme" {
		t.Fatalf("company=%q", records[0].Get(internal.FieldCompany))
	}
	extra := records[0].Extra()
	if len(extra) != 1 || extra[0].Name != "Notes" || extra[0].Value != "vip" {
		t.Fatalf("extra=%v", extra)
	}
	if records[1].Row != 2 {
		t.Fatalf("row=%d", records[1].Row)
	}
}

func TestParseCSVWindows1252(t *testing.T) {
	// "José" in Windows-1252 is 0x4A 0x6F 0x73 0xE9.
	blob := []byte("first name;last name\nJos\xe9;Garc\xeda\n")
	records, err := Read(TypeCSV, blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len=%d", len(records))
	}
	if got := records[0].Get(internal.FieldFirstName); got != "José" {
		t.Fatalf("first=%q", got)
	}
	if got := records[0].Get(internal.FieldLastName); got != "García" {
		t.Fatalf("last=%q", got)
	}
}

func TestParseXLSX(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Contacts export"},
		{"First Name", "Last Name", "Email", "Phone"},
		{"Ana", "Lopez", "ana@example.com", "+34 600 000 000"},
		{"Bob", "Stone", "bob@example.com", ""},
	})
	records, err := Read(TypeXLSX, blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	if records[0].Get(internal.FieldPhone) != "+34 600 000 000" {
		t.Fatalf("phone=%q", records[0].Get(internal.FieldPhone))
	}
	if records[1].Source != internal.SourceXLSX {
		t.Fatalf("source=%s", records[1].Source)
	}
}

func TestParseHTMLTable(t *testing.T) {
	html := `<p>intro</p><table><tr><td>x</td></tr></table>
<table><tr><th>Name</th><th>Email</th><th>Title</th></tr>
<tr><td>Ann</td><td>ann@example.com</td><td>VP Sales</td></tr></table>`
	records, err := Read(TypeHTML, []byte(html))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len=%d", len(records))
	}
	if records[0].Get(internal.FieldJobTitle) != "VP Sales" {
		t.Fatalf("title=%q", records[0].Get(internal.FieldJobTitle))
	}
}

func TestParseEMLAttachment(t *testing.T) {
	eml := strings.Join([]string{
		"From: sales@example.com",
		"To: ops@example.com",
		"Subject: leads",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"see attached",
		"--b1",
		`Content-Type: text/csv; name="leads.csv"`,
		`Content-Disposition: attachment; filename="leads.csv"`,
		"",
		"email,company",
		"a@b.com,Acme",
		"--b1--",
		"",
	}, "\r\n")
	records, err := Read(TypeEML, []byte(eml))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len=%d", len(records))
	}
	if records[0].Source != internal.SourceEmailEML || records[0].Get(internal.FieldCompany) != "Acme" {
		t.Fatalf("record=%+v", records[0])
	}
}

func TestReadFileDetectsType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	if err := os.WriteFile(path, []byte("email\nx@y.io\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := ReadFile("", path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len=%d", len(records))
	}
	if _, err := ReadFile("", filepath.Join(t.TempDir(), "list.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Read("pdf", nil); err == nil {
		t.Fatal("expected unsupported type error")
	}
}

func TestNoHeaderGivesNoRecords(t *testing.T) {
	records, err := Read(TypeCSV, []byte("foo,bar\n1,2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("len=%d", len(records))
	}
}
