package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MedReg-Intelligence/internal/application/approval"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
)

const publisherSource = "medreg-engine"

// VerdictPublisher implements the engine publisher port.  Verdicts are
// enveloped and keyed by record ID so per-record ordering holds.
type VerdictPublisher struct {
	producer *Producer
	logger   logging.Logger
	now      func() time.Time
	newID    func() string
}

type PublisherOption func(*VerdictPublisher)

func WithClock(now func() time.Time) PublisherOption {
	return func(p *VerdictPublisher) { p.now = now }
}

func WithIDGenerator(gen func() string) PublisherOption {
	return func(p *VerdictPublisher) { p.newID = gen }
}

func NewVerdictPublisher(producer *Producer, log logging.Logger, opts ...PublisherOption) *VerdictPublisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	p := &VerdictPublisher{
		producer: producer,
		logger:   log,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishVerdict envelopes and sends one verdict.
func (p *VerdictPublisher) PublishVerdict(ctx context.Context, verdict approval.Verdict) error {
	payload, err := json.Marshal(VerdictIssuedPayload{
		RecordID:         verdict.RecordID,
		Approved:         verdict.Approved,
		Confidence:       verdict.Confidence,
		ReviewLevel:      string(verdict.ReviewLevel),
		Reasoning:        verdict.Reasoning,
		RiskFactors:      verdict.RiskFactors,
		ComplianceIssues: verdict.ComplianceIssues,
		EvaluatedAt:      verdict.EvaluatedAt,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal verdict payload")
	}

	envelope := EventEnvelope{
		EventID:       p.newID(),
		EventType:     EventTypeVerdictIssued,
		Source:        publisherSource,
		Timestamp:     p.now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	if err := p.producer.Publish(ctx, Message{
		Topic: TopicApprovalVerdicts,
		Key:   []byte(verdict.RecordID),
		Value: value,
	}); err != nil {
		return err
	}

	p.logger.Debug("verdict published",
		logging.String("record_id", verdict.RecordID),
		logging.String("review_level", string(verdict.ReviewLevel)),
	)
	return nil
}
