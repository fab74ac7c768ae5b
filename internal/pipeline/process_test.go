package pipeline

import (
	"testing"

	"leadclean/internal"
	"leadclean/internal/config"
	"leadclean/internal/lookup"
)

func rec(row int, kv ...string) internal.RawRecord {
	r := internal.RawRecord{Row: row, Source: internal.SourceCSV}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Fields = append(r.Fields, internal.Field{Name: kv[i], Value: kv[i+1]})
	}
	return r
}

func newTestProcessor(stages config.Stages) *Processor {
	cfg := config.Config{Stages: stages, PhoneRegion: "US"}
	resolver := lookup.New([]lookup.Pair{{Variant: "Acme Corporation", Canonical: "Acme"}})
	return NewProcessor(cfg, resolver, nil).WithPhoneNormalizer(HeuristicPhoneNormalizer{})
}

func TestProcessScenario(t *testing.T) {
	p := newTestProcessor(config.AllStages(3))
	res := p.Process([]internal.RawRecord{
		rec(1, internal.FieldFirstName, "JOHN", internal.FieldLastName, "", internal.FieldEmail, "john.smith@example.com"),
	})
	if len(res.Contacts) != 1 {
		t.Fatalf("contacts=%d", len(res.Contacts))
	}
	c := res.Contacts[0]
	if c.FirstName != "John" || c.LastName != "Smith" || !c.EmailValid {
		t.Fatalf("contact=%+v", c)
	}
	if c.QualityScore != 70 {
		t.Fatalf("score=%d", c.QualityScore)
	}
	if c.ChangeLog[internal.FieldFirstName].Kind != internal.ChangeCleaned {
		t.Fatalf("first name change=%+v", c.ChangeLog[internal.FieldFirstName])
	}
	if c.ChangeLog[internal.FieldLastName].Kind != internal.ChangeInferred {
		t.Fatalf("last name change=%+v", c.ChangeLog[internal.FieldLastName])
	}
	if res.Stats.InferredLastName != 1 || res.Stats.ValidEmail != 1 || res.Stats.Changed != 1 {
		t.Fatalf("stats=%+v", res.Stats)
	}
}

func TestProcessFullBatch(t *testing.T) {
	p := newTestProcessor(config.AllStages(2))
	res := p.Process([]internal.RawRecord{
		rec(1, internal.FieldFirstName, "ann", internal.FieldLastName, "lee", internal.FieldEmail, "A@B.com",
			internal.FieldCompany, "acme corporation", internal.FieldPhone, "+1 (415) 555-2671", internal.FieldJobTitle, "VP Sales"),
		rec(2, internal.FieldFirstName, "Ann", internal.FieldEmail, "a@b.com", internal.FieldCompany, "ACME"),
		rec(3, internal.FieldFirstName, "Bob", internal.FieldEmail, "bob@mailinator.com", internal.FieldCompany, "Globex"),
		rec(4, internal.FieldEmail, "broken@", "Notes", "call back"),
		rec(5),
	})

	if res.Stats.Total != 4 {
		t.Fatalf("total=%d", res.Stats.Total)
	}
	first := res.Contacts[0]
	if first.Company != "Acme" || first.JobTitle != "Vice President Sales" || first.Phone != "+14155552671" || !first.PhoneValid {
		t.Fatalf("first=%+v", first)
	}
	if first.QualityScore != 100 {
		t.Fatalf("first score=%d", first.QualityScore)
	}
	second := res.Contacts[1]
	if first.DuplicateGroupID == "" || first.DuplicateGroupID != second.DuplicateGroupID {
		t.Fatal("same email must share a group")
	}
	if first.IsDuplicate || !second.IsDuplicate {
		t.Fatal("higher score must be canonical")
	}
	if !res.Contacts[2].EmailDisposable {
		t.Fatal("mailinator address should be disposable")
	}
	broken := res.Contacts[3]
	if broken.EmailValid || broken.Email != "broken@" {
		t.Fatalf("broken=%+v", broken)
	}
	if len(broken.Extra) != 1 || broken.Extra[0].Name != "Notes" {
		t.Fatalf("extra=%+v", broken.Extra)
	}

	s := res.Stats
	if s.ValidEmail != 3 || s.InvalidEmail != 1 || s.Duplicates != 1 || s.DisposableEmail != 1 || s.ValidPhone != 1 {
		t.Fatalf("stats=%+v", s)
	}
	if len(s.ListCounts) != 2 || s.ListCounts[0]+s.ListCounts[1] != 4 {
		t.Fatalf("list counts=%v", s.ListCounts)
	}
	for _, c := range res.Contacts {
		if c.ListAssignment < 0 || c.ListAssignment > 1 {
			t.Fatalf("row %d list %d", c.Row, c.ListAssignment)
		}
		if c.QualityScore != Score(c) {
			t.Fatalf("row %d stored score %d, recomputed %d", c.Row, c.QualityScore, Score(c))
		}
	}

	lists := res.Lists(true)
	kept := len(lists[0]) + len(lists[1])
	if kept != 3 {
		t.Fatalf("lists without duplicates hold %d contacts", kept)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	p := newTestProcessor(config.AllStages(4))
	res := p.Process([]internal.RawRecord{rec(1), rec(2, internal.FieldEmail, "  ")})
	if len(res.Contacts) != 0 || !res.Stats.Empty() {
		t.Fatalf("result=%+v", res)
	}
	if len(res.Stats.ListCounts) != 4 {
		t.Fatalf("list counts=%v", res.Stats.ListCounts)
	}
	if res.Stats.AverageQuality != 0 {
		t.Fatalf("avg=%v", res.Stats.AverageQuality)
	}
}

func TestProcessDisabledStages(t *testing.T) {
	p := newTestProcessor(config.Stages{})
	res := p.Process([]internal.RawRecord{
		rec(1, internal.FieldFirstName, " JOHN ", internal.FieldEmail, "john.smith@example.com",
			internal.FieldPhone, "415 555 2671", internal.FieldCompany, "acme corporation"),
		rec(2, internal.FieldFirstName, "JOHN", internal.FieldEmail, "john.smith@example.com"),
	})
	c := res.Contacts[0]
	if c.FirstName != "JOHN" || c.LastName != "" || c.Company != "acme corporation" || c.Phone != "415 555 2671" {
		t.Fatalf("contact=%+v", c)
	}
	if c.EmailValid || c.PhoneValid || len(c.ChangeLog) != 0 {
		t.Fatalf("disabled stages must not validate or log: %+v", c)
	}
	// first name and company only
	if c.QualityScore != 35 {
		t.Fatalf("score=%d", c.QualityScore)
	}
	if res.Contacts[1].IsDuplicate || res.Contacts[1].DuplicateGroupID != "" {
		t.Fatal("duplicate detection ran while disabled")
	}
	if len(res.Stats.ListCounts) != 1 || res.Stats.ListCounts[0] != 2 {
		t.Fatalf("list counts=%v", res.Stats.ListCounts)
	}
	for _, c := range res.Contacts {
		if c.ListAssignment != 0 {
			t.Fatalf("row %d list %d", c.Row, c.ListAssignment)
		}
	}
}

func TestProcessClampsListCount(t *testing.T) {
	records := []internal.RawRecord{}
	for i := 1; i <= 12; i++ {
		records = append(records, rec(i, internal.FieldCompany, "Acme"))
	}
	res := newTestProcessor(config.AllStages(25)).Process(records)
	if len(res.Stats.ListCounts) != config.MaxListCount {
		t.Fatalf("list counts=%v", res.Stats.ListCounts)
	}
	res = newTestProcessor(config.AllStages(0)).Process(records)
	if len(res.Stats.ListCounts) != config.MinListCount || res.Stats.ListCounts[0] != 12 {
		t.Fatalf("list counts=%v", res.Stats.ListCounts)
	}
}

func TestSummarize(t *testing.T) {
	contacts := []internal.Contact{
		{Email: "a@b.com", EmailValid: true, QualityScore: 30},
		{Email: "bad", QualityScore: 0},
		{QualityScore: 20, ChangeLog: map[string]internal.Change{
			internal.FieldFirstName: {Before: "ANN", After: "Ann", Kind: internal.ChangeCleaned},
		}},
	}
	s := Summarize(contacts, []int{3})
	if s.ValidEmail != 1 || s.InvalidEmail != 1 || s.MissingEmail != 1 {
		t.Fatalf("stats=%+v", s)
	}
	if s.AverageQuality != 16.67 || s.PercentChanged != 33.33 {
		t.Fatalf("avg=%v pct=%v", s.AverageQuality, s.PercentChanged)
	}
}
