package kafka

import (
	"encoding/json"
	"time"
)

// Topic constants.
const (
	TopicApprovalVerdicts = "medreg.approval.verdicts"
	TopicRecordIngested   = "medreg.record.ingested"
	TopicAnalysisComplete = "medreg.analysis.complete"
)

// Event type constants carried in the envelope.
const (
	EventTypeVerdictIssued    = "approval.verdict_issued"
	EventTypeAnalysisComplete = "analysis.complete"
)

const schemaVersion = "1.0"

// EventEnvelope is the standard wrapper for every message on the bus.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// VerdictIssuedPayload is the wire form of an approval verdict.
type VerdictIssuedPayload struct {
	RecordID         string    `json:"record_id"`
	Approved         bool      `json:"approved"`
	Confidence       float64   `json:"confidence"`
	ReviewLevel      string    `json:"review_level"`
	Reasoning        []string  `json:"reasoning,omitempty"`
	RiskFactors      []string  `json:"risk_factors,omitempty"`
	ComplianceIssues []string  `json:"compliance_issues,omitempty"`
	EvaluatedAt      time.Time `json:"evaluated_at"`
}
