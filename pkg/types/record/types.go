// Package record defines the transport-level representation of regulatory
// corpus records.  The Record DTO is the single explicit shape shared by the
// record store, the analysis engine, and the interface layers; every field a
// scoring or mapping routine may read is declared here rather than accessed
// ad hoc.
package record

import (
	"time"
)

// Priority is the editorial priority assigned to a record by its source feed.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority maps a raw string onto a Priority, defaulting to PriorityLow
// for unrecognised values.  Unknown priorities are a lookup-table miss, not an
// error.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s)
	}
	return PriorityLow
}

// Type distinguishes the two record variants the corpus contains.
type Type string

const (
	TypeRegulatoryUpdate Type = "regulatory_update"
	TypeLegalCase        Type = "legal_case"
)

// RegulatoryKind further classifies a regulatory update; it drives the
// record-type → event-category table in the timeline builder.
type RegulatoryKind string

const (
	KindApproval     RegulatoryKind = "approval"
	KindClearance    RegulatoryKind = "clearance"
	KindRecall       RegulatoryKind = "recall"
	KindSafetyAlert  RegulatoryKind = "safety_alert"
	KindRegistration RegulatoryKind = "registration"
	KindGuidance     RegulatoryKind = "guidance"
	KindOther        RegulatoryKind = "other"
)

// RecordDTO is the explicit tagged record shape used across layer boundaries.
// Required fields: ID, Title, Authority, Region, PublishedAt, RecordType.
// All remaining fields are optional signals; absence means "insufficient
// signal", never an error.
type RecordDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Authority   string   `json:"authority"`
	Region      string   `json:"region"`
	PublishedAt time.Time `json:"published_at"`
	Priority    Priority `json:"priority"`
	RecordType  Type     `json:"record_type"`

	// Regulatory-update extras.
	RegulatoryKind RegulatoryKind `json:"regulatory_kind,omitempty"`
	Categories     []string       `json:"categories,omitempty"`
	DeviceClasses  []string       `json:"device_classes,omitempty"`
	Keywords       []string       `json:"keywords,omitempty"`

	// Legal-case extras.
	Summary      string     `json:"summary,omitempty"`
	KeyIssues    []string   `json:"key_issues,omitempty"`
	Outcome      string     `json:"outcome,omitempty"`
	LegalBasis   string     `json:"legal_basis,omitempty"`
	Jurisdiction string     `json:"jurisdiction,omitempty"`
	DecisionDate *time.Time `json:"decision_date,omitempty"`
}
