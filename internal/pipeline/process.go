package pipeline

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadclean/internal"
	"leadclean/internal/config"
	"leadclean/internal/logger"
	"leadclean/internal/lookup"
)

// Processor runs one batch of raw records through the enabled stages:
// field normalizers, derivation and scoring per record, then duplicate
// detection and list splitting over the whole batch.
type Processor struct {
	stages     config.Stages
	company    CompanyNormalizer
	phone      PhoneNormalizer
	titles     *TitleExpander
	disposable *DisposableDomains
	log        *zap.Logger
}

type Result struct {
	Contacts []internal.Contact
	Stats    internal.Stats
}

func NewProcessor(cfg config.Config, resolver *lookup.Resolver, log *zap.Logger) *Processor {
	if resolver == nil {
		resolver = lookup.Empty()
	}
	return &Processor{
		stages:     cfg.Stages,
		company:    CompanyNormalizer{Resolver: resolver, FuzzyDistance: cfg.LookupFuzzyDistance},
		phone:      NewPhoneNormalizer(cfg.PhoneParser, cfg.PhoneRegion),
		titles:     NewTitleExpander(cfg.Abbreviations),
		disposable: NewDisposableDomains(cfg.DisposableDomains),
		log:        logger.OrNop(log),
	}
}

// WithPhoneNormalizer swaps the phone capability chosen at construction.
func (p *Processor) WithPhoneNormalizer(n PhoneNormalizer) *Processor {
	p.phone = n
	return p
}

func (p *Processor) listCount() int {
	if !p.stages.SplitLists {
		return 1
	}
	n := config.ClampListCount(p.stages.ListCount)
	if n != p.stages.ListCount {
		p.log.Warn("pipeline: list count out of range, clamped", zap.Int("requested", p.stages.ListCount), zap.Int("used", n))
	}
	return n
}

// Process never fails: bad fields are marked invalid and an empty batch gives
// zero statistics.
func (p *Processor) Process(records []internal.RawRecord) Result {
	start := time.Now()
	n := p.listCount()

	contacts := make([]internal.Contact, 0, len(records))
	for _, rec := range records {
		if rec.Empty() {
			continue
		}
		contacts = append(contacts, p.BuildContact(rec))
	}
	if len(contacts) == 0 {
		p.log.Warn("pipeline: batch has no usable records", zap.Int("records", len(records)))
		return Result{Contacts: contacts, Stats: internal.Stats{ListCounts: make([]int, n)}}
	}

	flagged := 0
	if p.stages.DetectDuplicates {
		flagged = DetectDuplicates(contacts)
	}

	var counts []int
	if p.stages.SplitLists {
		counts = SplitLists(contacts, SplitOptions{ListCount: n, ExcludeDuplicates: p.stages.ExcludeDuplicates})
	} else {
		for i := range contacts {
			contacts[i].ListAssignment = 0
		}
		counts = []int{len(contacts)}
	}

	stats := Summarize(contacts, counts)
	p.log.Info("pipeline: batch processed",
		zap.Int("total", stats.Total),
		zap.Int("valid_email", stats.ValidEmail),
		zap.Int("duplicates", flagged),
		zap.Float64("avg_quality", stats.AverageQuality),
		zap.Ints("lists", stats.ListCounts),
		zap.Duration("took", time.Since(start)),
	)
	return Result{Contacts: contacts, Stats: stats}
}

// BuildContact applies the per-record stages to one raw record.
func (p *Processor) BuildContact(rec internal.RawRecord) internal.Contact {
	c := internal.Contact{Row: rec.Row, ListAssignment: -1, Extra: rec.Extra()}

	c.FirstName = p.apply(&c, internal.FieldFirstName, rec.Get(internal.FieldFirstName), p.stages.NormalizeNames, NormalizePersonName)
	c.LastName = p.apply(&c, internal.FieldLastName, rec.Get(internal.FieldLastName), p.stages.NormalizeNames, NormalizePersonName)
	c.Company = p.apply(&c, internal.FieldCompany, rec.Get(internal.FieldCompany), p.stages.NormalizeCompany, p.company.Normalize)
	c.JobTitle = p.apply(&c, internal.FieldJobTitle, rec.Get(internal.FieldJobTitle), p.stages.ExpandTitles, p.titles.Normalize)

	c.Email = p.apply(&c, internal.FieldEmail, rec.Get(internal.FieldEmail), p.stages.ValidateEmail, NormalizeEmail)
	if p.stages.ValidateEmail && c.Email != "" {
		c.EmailValid = ValidEmail(c.Email)
		c.EmailDisposable = c.EmailValid && p.disposable.Contains(EmailDomain(c.Email))
	}

	rawPhone := rec.Get(internal.FieldPhone)
	c.Phone = strings.TrimSpace(rawPhone)
	if p.stages.NormalizePhone && c.Phone != "" {
		phone, valid := p.phone.Normalize(rawPhone)
		c.RecordChange(internal.FieldPhone, rawPhone, phone, internal.ChangeCleaned)
		c.Phone, c.PhoneValid = phone, valid
		if !valid {
			p.log.Debug("pipeline: phone not parseable", zap.Int("row", rec.Row), zap.String("phone", c.Phone))
		}
	}

	if p.stages.InferLastName && InferLastName(&c) {
		p.log.Debug("pipeline: last name inferred", zap.Int("row", rec.Row), zap.String("last_name", c.LastName))
	}

	rescore(&c)
	return c
}

// apply runs a normalizer when its stage is enabled and logs the change.
// Disabled stages only trim.
func (p *Processor) apply(c *internal.Contact, field, raw string, enabled bool, norm func(string) (string, bool)) string {
	if !enabled {
		return strings.TrimSpace(raw)
	}
	clean, changed := norm(raw)
	if changed {
		c.RecordChange(field, raw, clean, internal.ChangeCleaned)
	}
	return clean
}

// Summarize computes the batch statistics from finished contacts.
func Summarize(contacts []internal.Contact, listCounts []int) internal.Stats {
	s := internal.Stats{Total: len(contacts), ListCounts: listCounts}
	if s.Total == 0 {
		return s
	}
	qualitySum := 0
	for _, c := range contacts {
		switch {
		case c.Email == "":
			s.MissingEmail++
		case c.EmailValid:
			s.ValidEmail++
		default:
			s.InvalidEmail++
		}
		if c.EmailDisposable {
			s.DisposableEmail++
		}
		if c.PhoneValid {
			s.ValidPhone++
		}
		if c.IsDuplicate {
			s.Duplicates++
		}
		if c.Cleaned() {
			s.Changed++
		}
		if ch, ok := c.ChangeLog[internal.FieldLastName]; ok && ch.Kind == internal.ChangeInferred {
			s.InferredLastName++
		}
		qualitySum += c.QualityScore
	}
	s.AverageQuality = round2(float64(qualitySum) / float64(s.Total))
	s.PercentChanged = round2(float64(s.Changed) * 100 / float64(s.Total))
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Lists groups contacts by list assignment, keeping input order inside each
// list. Duplicates are left out when dropDuplicates is set.
func (r Result) Lists(dropDuplicates bool) [][]internal.Contact {
	out := make([][]internal.Contact, len(r.Stats.ListCounts))
	for _, c := range r.Contacts {
		if dropDuplicates && c.IsDuplicate {
			continue
		}
		if c.ListAssignment < 0 || c.ListAssignment >= len(out) {
			continue
		}
		out[c.ListAssignment] = append(out[c.ListAssignment], c)
	}
	return out
}
