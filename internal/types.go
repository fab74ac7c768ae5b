package internal

import "strings"

const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldCompany   = "company"
	FieldJobTitle  = "job_title"
)

// CanonicalFields lists the fields the pipeline understands, in export order.
var CanonicalFields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldCompany, FieldJobTitle}

type RecordSource string

const (
	SourceCSV      RecordSource = "csv"
	SourceXLSX     RecordSource = "xlsx"
	SourceHTML     RecordSource = "html_table"
	SourceEmailEML RecordSource = "eml"
)

type Field struct {
	Name  string
	Value string
}

// RawRecord is one ingested row. Fields keep their column order.
type RawRecord struct {
	Row    int
	Source RecordSource
	Fields []Field
}

// Get returns the first value stored under name, or "" when absent.
func (r RawRecord) Get(name string) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Extra returns the fields that are not canonical pipeline fields.
func (r RawRecord) Extra() []Field {
	out := make([]Field, 0)
	for _, f := range r.Fields {
		if !IsCanonicalField(f.Name) {
			out = append(out, f)
		}
	}
	return out
}

func (r RawRecord) Empty() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f.Value) != "" {
			return false
		}
	}
	return true
}

func IsCanonicalField(name string) bool {
	for _, c := range CanonicalFields {
		if c == name {
			return true
		}
	}
	return false
}

type ChangeKind string

const (
	ChangeCleaned  ChangeKind = "cleaned"
	ChangeInferred ChangeKind = "inferred"
)

type Change struct {
	Before string     `json:"before"`
	After  string     `json:"after"`
	Kind   ChangeKind `json:"kind"`
}

type Contact struct {
	Row int `json:"row"`

	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	EmailValid      bool   `json:"email_valid"`
	EmailDisposable bool   `json:"email_disposable"`
	Phone           string `json:"phone"`
	PhoneValid      bool   `json:"phone_valid"`
	Company         string `json:"company"`
	JobTitle        string `json:"job_title"`

	QualityScore     int    `json:"quality_score"`
	IsDuplicate      bool   `json:"is_duplicate"`
	DuplicateGroupID string `json:"duplicate_group_id,omitempty"`
	ListAssignment   int    `json:"list_assignment"`

	ChangeLog map[string]Change `json:"change_log,omitempty"`
	Extra     []Field           `json:"-"`
}

// RecordChange stores a before/after pair for field. No-op changes are ignored.
func (c *Contact) RecordChange(field, before, after string, kind ChangeKind) {
	if before == after {
		return
	}
	if c.ChangeLog == nil {
		c.ChangeLog = map[string]Change{}
	}
	c.ChangeLog[field] = Change{Before: before, After: after, Kind: kind}
}

// Cleaned reports whether normalization altered any field of the contact.
func (c *Contact) Cleaned() bool {
	for _, ch := range c.ChangeLog {
		if ch.Kind == ChangeCleaned {
			return true
		}
	}
	return false
}

type Stats struct {
	Total            int     `json:"total"`
	ValidEmail       int     `json:"valid_email"`
	InvalidEmail     int     `json:"invalid_email"`
	MissingEmail     int     `json:"missing_email"`
	DisposableEmail  int     `json:"disposable_email"`
	ValidPhone       int     `json:"valid_phone"`
	InferredLastName int     `json:"inferred_last_name"`
	Duplicates       int     `json:"duplicates"`
	Changed          int     `json:"changed"`
	PercentChanged   float64 `json:"percent_changed"`
	AverageQuality   float64 `json:"average_quality"`
	ListCounts       []int   `json:"list_counts"`
}

// Empty reports a structurally empty or unusable upload.
func (s Stats) Empty() bool {
	return s.Total == 0
}
