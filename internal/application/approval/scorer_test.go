package approval

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newScorer() Service {
	return NewService(Deps{Now: func() time.Time { return fixedNow }})
}

func regulatoryRecord(t *testing.T, mutate func(*rtypes.RecordDTO)) *record.Record {
	t.Helper()
	dto := rtypes.RecordDTO{
		ID:          "rec-1",
		Title:       "Device XYZ 510(k) Clearance",          // 27 chars
		Body:        strings.Repeat("Clearance granted after premarket review of safety data. ", 6), // > 300 chars
		Authority:   "FDA",
		Region:      "US",
		PublishedAt: fixedNow.AddDate(0, 0, -3),
		RecordType:  rtypes.TypeRegulatoryUpdate,
		Categories:  []string{"cardiovascular"},
		DeviceClasses: []string{"II"},
	}
	if mutate != nil {
		mutate(&dto)
	}
	r, err := record.NewFromDTO(dto)
	require.NoError(t, err)
	return r
}

func TestEvaluateQualityArithmetic(t *testing.T) {
	t.Parallel()

	// Title 27 chars, body > 300 chars with >= 3 regulatory keyword hits,
	// categories and device classes present: content quality caps at 1.0.
	// FDA reliability 0.95, published 3 days ago: timeliness 1.0.
	r := regulatoryRecord(t, nil)
	v := newScorer().EvaluateRegulatoryUpdate(context.Background(), r)

	// Relevance: base 0.3 + medium hit "clearance" (0.1) + US region
	// bonus 0.1 = 0.5.
	wantQuality := 0.40*1.0 + 0.25*0.95 + 0.20*0.5 + 0.15*1.0
	assert.InDelta(t, wantQuality, v.Confidence, 1e-9)
	assert.Empty(t, v.RiskFactors)
	assert.Empty(t, v.ComplianceIssues)
	require.NotEmpty(t, v.Reasoning)
	assert.Contains(t, v.Reasoning[0], "quality score")
}

func TestEvaluateConfidenceBounded(t *testing.T) {
	t.Parallel()

	scorer := newScorer()
	records := []*record.Record{
		regulatoryRecord(t, nil),
		regulatoryRecord(t, func(d *rtypes.RecordDTO) {
			d.Title = "Urgent recall: device malfunction caused death and serious injury"
			d.Body = "Recall after contamination, malfunction, death, serious injury, cybersecurity and counterfeit findings."
			d.Categories = nil
			d.DeviceClasses = nil
		}),
		regulatoryRecord(t, func(d *rtypes.RecordDTO) {
			d.Body = ""
			d.Authority = "Unknown Gazette"
			d.PublishedAt = fixedNow.AddDate(-3, 0, 0)
		}),
	}
	for _, r := range records {
		v := scorer.EvaluateRegulatoryUpdate(context.Background(), r)
		assert.GreaterOrEqual(t, v.Confidence, 0.0)
		assert.LessOrEqual(t, v.Confidence, 1.0)
		assert.NotEmpty(t, v.Reasoning)
	}
}

func TestEvaluateReviewLevelBands(t *testing.T) {
	t.Parallel()

	scorer := newScorer()

	// High-quality, fresh FDA record with no issues: auto approval.
	auto := scorer.EvaluateRegulatoryUpdate(context.Background(), regulatoryRecord(t, func(d *rtypes.RecordDTO) {
		d.Title = "FDA grants 510(k) clearance approval for safety guidance system"
	}))
	assert.Equal(t, ReviewAuto, auto.ReviewLevel)
	assert.True(t, auto.Approved)
	assert.GreaterOrEqual(t, auto.Confidence, autoThreshold)

	// Unknown authority drags reliability to 0.5: senior band.
	senior := scorer.EvaluateRegulatoryUpdate(context.Background(), regulatoryRecord(t, func(d *rtypes.RecordDTO) {
		d.Authority = "Unknown Gazette"
	}))
	assert.Equal(t, ReviewSenior, senior.ReviewLevel)
	assert.False(t, senior.Approved)

	// Stale record from an unknown authority: expert band.
	expert := scorer.EvaluateRegulatoryUpdate(context.Background(), regulatoryRecord(t, func(d *rtypes.RecordDTO) {
		d.Authority = "Unknown Gazette"
		d.PublishedAt = fixedNow.AddDate(-2, 0, 0)
		d.Categories = nil
		d.DeviceClasses = nil
		d.Body = strings.Repeat("General administrative notice text. ", 10)
	}))
	assert.Equal(t, ReviewExpert, expert.ReviewLevel)

	// Compliance-impaired empty-body record collapses to board.
	board := scorer.EvaluateRegulatoryUpdate(context.Background(), regulatoryRecord(t, func(d *rtypes.RecordDTO) {
		d.Authority = "Unknown Gazette"
		d.PublishedAt = fixedNow.AddDate(-2, 0, 0)
		d.Body = ""
		d.Categories = nil
		d.DeviceClasses = nil
		d.Title = "Short notice of change"
	}))
	assert.Equal(t, ReviewBoard, board.ReviewLevel)
	assert.False(t, board.Approved)
}

func TestEvaluateComplianceIssuesBlockAutoApproval(t *testing.T) {
	t.Parallel()

	// A legal case without an outcome carries a compliance issue, so even a
	// high confidence cannot reach the auto band.
	lc, err := record.NewFromDTO(rtypes.RecordDTO{
		ID:          "case-1",
		Title:       "Smith v MedCore product liability ruling",
		Body:        strings.Repeat("The court examined the recall and approval history in detail. ", 6),
		Authority:   "FDA",
		Region:      "US",
		PublishedAt: fixedNow.AddDate(0, 0, -2),
		RecordType:  rtypes.TypeLegalCase,
		Categories:  []string{"litigation"},
	})
	require.NoError(t, err)

	v := newScorer().EvaluateLegalCase(context.Background(), lc)
	assert.False(t, v.Approved)
	assert.NotEqual(t, ReviewAuto, v.ReviewLevel)
	assert.Contains(t, v.ComplianceIssues, "legal case lacks a declared outcome")
}

func TestEvaluateMalformedInputDegradesToBoard(t *testing.T) {
	t.Parallel()

	scorer := newScorer()

	v := scorer.EvaluateRegulatoryUpdate(context.Background(), nil)
	assert.False(t, v.Approved)
	assert.Equal(t, ReviewBoard, v.ReviewLevel)
	assert.Zero(t, v.Confidence)
	assert.NotEmpty(t, v.Reasoning)

	// Wrong variant on the evaluation path is treated as malformed input.
	v = scorer.EvaluateLegalCase(context.Background(), regulatoryRecord(t, nil))
	assert.Equal(t, ReviewBoard, v.ReviewLevel)
	assert.False(t, v.Approved)
}

func TestEvaluateRiskFactorsReduceConfidence(t *testing.T) {
	t.Parallel()

	scorer := newScorer()
	clean := scorer.EvaluateRegulatoryUpdate(context.Background(), regulatoryRecord(t, nil))
	risky := scorer.EvaluateRegulatoryUpdate(context.Background(), regulatoryRecord(t, func(d *rtypes.RecordDTO) {
		d.Body = d.Body + " A recall was initiated after a device malfunction."
	}))

	require.NotEmpty(t, risky.RiskFactors)
	assert.Less(t, risky.Confidence, clean.Confidence+0.2,
		"risk factors must not raise confidence past the clean baseline band")
	for _, rf := range risky.RiskFactors {
		assert.Contains(t, rf, "content mentions")
	}
}

func TestEvaluateReliabilityOverrides(t *testing.T) {
	t.Parallel()

	base := NewService(Deps{Now: func() time.Time { return fixedNow }})
	overridden := NewService(Deps{
		Now:                  func() time.Time { return fixedNow },
		ReliabilityOverrides: map[string]float64{"FDA": 0.60},
	})

	r := regulatoryRecord(t, nil)
	vBase := base.EvaluateRegulatoryUpdate(context.Background(), r)
	vOverride := overridden.EvaluateRegulatoryUpdate(context.Background(), r)
	assert.Greater(t, vBase.Confidence, vOverride.Confidence)
}

func TestTimelinessSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ageDays int
		want    float64
	}{
		{0, 1.0},
		{7, 1.0},
		{8, 0.8},
		{30, 0.8},
		{31, 0.6},
		{90, 0.6},
		{91, 0.4},
		{180, 0.4},
		{181, 0.2},
		{365, 0.2},
		{366, 0.1},
		{1500, 0.1},
	}
	for _, tt := range tests {
		published := fixedNow.AddDate(0, 0, -tt.ageDays)
		assert.InDelta(t, tt.want, timelinessScore(published, fixedNow), 1e-9,
			"age %d days", tt.ageDays)
	}
}
