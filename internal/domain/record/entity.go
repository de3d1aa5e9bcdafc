// Package record implements the Record bounded context: the immutable unit of
// comparison every analysis component operates on.  A Record is owned by the
// record store; the engine only ever holds read-only snapshots of it for the
// duration of one analysis pass.
package record

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

// Record is the engine-facing representation of one regulatory update or
// legal case.  Fields are never mutated after construction; derived views
// (normalized text, effective summaries) are computed on demand.
type Record struct {
	ID          string
	Title       string
	Body        string
	Authority   string
	Region      string
	PublishedAt time.Time
	Priority    rtypes.Priority
	RecordType  rtypes.Type

	// ── Regulatory-update signals ────────────────────────────────────────────
	RegulatoryKind rtypes.RegulatoryKind
	Categories     []string
	DeviceClasses  []string
	Keywords       []string

	// ── Legal-case signals ───────────────────────────────────────────────────
	Summary      string
	KeyIssues    []string
	Outcome      string
	LegalBasis   string
	Jurisdiction string
	DecisionDate *time.Time
}

// NewFromDTO validates a transport-level record and converts it into the
// domain Record.  Required fields are ID, Title, Authority, Region,
// PublishedAt, and a recognised RecordType; everything else is an optional
// signal.
func NewFromDTO(dto rtypes.RecordDTO) (*Record, error) {
	if dto.ID == "" {
		return nil, errors.Validation("id", "record id must not be empty")
	}
	if dto.Title == "" {
		return nil, errors.Validation("title", "record title must not be empty")
	}
	if dto.Authority == "" {
		return nil, errors.Validation("authority", "record authority must not be empty")
	}
	if dto.Region == "" {
		return nil, errors.Validation("region", "record region must not be empty")
	}
	if dto.PublishedAt.IsZero() {
		return nil, errors.Validation("published_at", "record publication time must be set")
	}
	switch dto.RecordType {
	case rtypes.TypeRegulatoryUpdate, rtypes.TypeLegalCase:
	default:
		return nil, errors.New(errors.CodeRecordTypeUnknown,
			fmt.Sprintf("unrecognised record type %q", dto.RecordType))
	}

	r := &Record{
		ID:             dto.ID,
		Title:          dto.Title,
		Body:           dto.Body,
		Authority:      dto.Authority,
		Region:         dto.Region,
		PublishedAt:    dto.PublishedAt,
		Priority:       rtypes.ParsePriority(string(dto.Priority)),
		RecordType:     dto.RecordType,
		RegulatoryKind: dto.RegulatoryKind,
		Categories:     append([]string(nil), dto.Categories...),
		DeviceClasses:  append([]string(nil), dto.DeviceClasses...),
		Keywords:       append([]string(nil), dto.Keywords...),
		Summary:        dto.Summary,
		KeyIssues:      append([]string(nil), dto.KeyIssues...),
		Outcome:        dto.Outcome,
		LegalBasis:     dto.LegalBasis,
		Jurisdiction:   dto.Jurisdiction,
	}
	if dto.DecisionDate != nil {
		d := dto.DecisionDate.UTC()
		r.DecisionDate = &d
	}
	return r, nil
}

// ToDTO converts the domain Record back into its transport shape.
func (r *Record) ToDTO() rtypes.RecordDTO {
	dto := rtypes.RecordDTO{
		ID:             r.ID,
		Title:          r.Title,
		Body:           r.Body,
		Authority:      r.Authority,
		Region:         r.Region,
		PublishedAt:    r.PublishedAt,
		Priority:       r.Priority,
		RecordType:     r.RecordType,
		RegulatoryKind: r.RegulatoryKind,
		Categories:     append([]string(nil), r.Categories...),
		DeviceClasses:  append([]string(nil), r.DeviceClasses...),
		Keywords:       append([]string(nil), r.Keywords...),
		Summary:        r.Summary,
		KeyIssues:      append([]string(nil), r.KeyIssues...),
		Outcome:        r.Outcome,
		LegalBasis:     r.LegalBasis,
		Jurisdiction:   r.Jurisdiction,
	}
	if r.DecisionDate != nil {
		d := *r.DecisionDate
		dto.DecisionDate = &d
	}
	return dto
}

// IsLegalCase reports whether the record is a legal-case variant.
func (r *Record) IsLegalCase() bool {
	return r.RecordType == rtypes.TypeLegalCase
}

// IsRegulatoryUpdate reports whether the record is a regulatory-update
// variant.
func (r *Record) IsRegulatoryUpdate() bool {
	return r.RecordType == rtypes.TypeRegulatoryUpdate
}

// EffectiveSummary resolves the text to use wherever a case summary is
// expected: the Summary field when present, otherwise the Body.  This replaces
// ad-hoc fallback chains with one tested resolution rule.
func (r *Record) EffectiveSummary() string {
	if r.Summary != "" {
		return r.Summary
	}
	return r.Body
}

// EffectiveKeyIssues resolves the issue list to score against: KeyIssues when
// present, otherwise Keywords.  Returns nil when neither carries a signal.
func (r *Record) EffectiveKeyIssues() []string {
	if len(r.KeyIssues) > 0 {
		return r.KeyIssues
	}
	if len(r.Keywords) > 0 {
		return r.Keywords
	}
	return nil
}

// EffectiveDecisionDate resolves the date used for chronological ordering of
// legal cases: the declared decision date when present, otherwise the
// publication time.
func (r *Record) EffectiveDecisionDate() time.Time {
	if r.DecisionDate != nil {
		return *r.DecisionDate
	}
	return r.PublishedAt.UTC()
}

// PublishedAtUTC returns the publication time normalised to UTC.
func (r *Record) PublishedAtUTC() time.Time {
	return r.PublishedAt.UTC()
}

// ComparableText returns the concatenation of title and body used by the
// similarity-driven components.
func (r *Record) ComparableText() string {
	if r.Body == "" {
		return r.Title
	}
	return r.Title + " " + r.Body
}

// SearchableText returns the lower-cased concatenation of title, summary, and
// key issues used for theme keyword matching.
func (r *Record) SearchableText() string {
	parts := make([]string, 0, 3)
	parts = append(parts, r.Title)
	if r.Summary != "" {
		parts = append(parts, r.Summary)
	}
	if len(r.KeyIssues) > 0 {
		parts = append(parts, strings.Join(r.KeyIssues, " "))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Corpus is an immutable, indexed snapshot of records taken at the start of
// one analysis pass.  Records are stored in a stable order (ascending by
// publication time, then ID) so that every derived output is deterministic.
type Corpus struct {
	records []*Record
	byID    map[string]*Record
}

// NewCorpus builds a Corpus from a record slice.  The input slice is copied
// and re-ordered; later duplicates of an ID are dropped in favour of the
// first occurrence.
func NewCorpus(records []*Record) *Corpus {
	sorted := make([]*Record, 0, len(records))
	byID := make(map[string]*Record, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, dup := byID[r.ID]; dup {
			continue
		}
		byID[r.ID] = r
		sorted = append(sorted, r)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].PublishedAtUTC(), sorted[j].PublishedAtUTC()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &Corpus{records: sorted, byID: byID}
}

// Len returns the number of records in the snapshot.
func (c *Corpus) Len() int { return len(c.records) }

// All returns the snapshot's records in stable order.  Callers must not
// mutate the returned slice or its elements.
func (c *Corpus) All() []*Record { return c.records }

// Get looks a record up by ID.  The second return reports presence;
// absence is a signal, not an error.
func (c *Corpus) Get(id string) (*Record, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// LegalCases returns the snapshot's legal-case records in stable order.
func (c *Corpus) LegalCases() []*Record {
	out := make([]*Record, 0, len(c.records))
	for _, r := range c.records {
		if r.IsLegalCase() {
			out = append(out, r)
		}
	}
	return out
}

// RegulatoryUpdates returns the snapshot's regulatory-update records in
// stable order.
func (c *Corpus) RegulatoryUpdates() []*Record {
	out := make([]*Record, 0, len(c.records))
	for _, r := range c.records {
		if r.IsRegulatoryUpdate() {
			out = append(out, r)
		}
	}
	return out
}
