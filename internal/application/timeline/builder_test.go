package timeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

func newBuilder() Service {
	return NewService(Deps{
		DeviceNameThreshold:   0.7,
		ManufacturerThreshold: 0.8,
	})
}

func regUpdate(t *testing.T, id, title, body, authority string, kind rtypes.RegulatoryKind, published time.Time, priority rtypes.Priority) *record.Record {
	t.Helper()
	r, err := record.NewFromDTO(rtypes.RecordDTO{
		ID:             id,
		Title:          title,
		Body:           body,
		Authority:      authority,
		Region:         "US",
		PublishedAt:    published,
		Priority:       priority,
		RecordType:     rtypes.TypeRegulatoryUpdate,
		RegulatoryKind: kind,
	})
	require.NoError(t, err)
	return r
}

func TestBuildTimelineUnknownRecord(t *testing.T) {
	t.Parallel()

	corpus := record.NewCorpus(nil)
	assert.Nil(t, newBuilder().BuildTimeline(context.Background(), corpus, "missing"))
	assert.Nil(t, newBuilder().BuildTimeline(context.Background(), nil, "missing"))
}

func TestBuildTimelineOrdersEventsAndDerivesStatus(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	body := "Manufacturer: MedCore Devices. Cardiac stent update."
	corpus := record.NewCorpus([]*record.Record{
		regUpdate(t, "reg", "Registration: CardioStent X", body, "MHRA",
			rtypes.KindRegistration, base, rtypes.PriorityLow),
		regUpdate(t, "appr", "FDA Approves CardioStent X", body, "FDA",
			rtypes.KindApproval, base.AddDate(0, 3, 0), rtypes.PriorityMedium),
		regUpdate(t, "recall", "Recall Notice: CardioStent X", body, "FDA",
			rtypes.KindRecall, base.AddDate(1, 0, 0), rtypes.PriorityCritical),
		regUpdate(t, "other", "PMDA NeuroPulse Stimulator",
			"Manufacturer: NeuraTech. Different device entirely.", "PMDA",
			rtypes.KindApproval, base, rtypes.PriorityLow),
	})

	tl := newBuilder().BuildTimeline(context.Background(), corpus, "appr")
	require.NotNil(t, tl)
	assert.Equal(t, "appr", tl.RecordID)
	assert.Equal(t, "CardioStent X", tl.DeviceName)
	assert.Equal(t, "MedCore Devices", tl.Manufacturer)

	require.Len(t, tl.Events, 3)
	assert.Equal(t, "reg", tl.Events[0].RecordID)
	assert.Equal(t, "appr", tl.Events[1].RecordID)
	assert.Equal(t, "recall", tl.Events[2].RecordID)

	assert.Equal(t, "Registration", tl.Events[0].Category)
	assert.Equal(t, "Approval", tl.Events[1].Category)
	assert.Equal(t, "Recall", tl.Events[2].Category)

	assert.Equal(t, ImpactLow, tl.Events[0].Impact)
	assert.Equal(t, ImpactMedium, tl.Events[1].Impact)
	assert.Equal(t, ImpactHigh, tl.Events[2].Impact)

	// Status derives solely from the last event: a recall puts the device
	// under safety review.
	assert.Equal(t, StatusUnderSafetyReview, tl.CurrentStatus)
}

func TestBuildTimelineStatusVerdicts(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		kind rtypes.RegulatoryKind
		want string
	}{
		{"approval", rtypes.KindApproval, StatusApproved},
		{"clearance", rtypes.KindClearance, StatusApproved},
		{"registration", rtypes.KindRegistration, StatusRegistered},
		{"safety alert", rtypes.KindSafetyAlert, StatusUnderSafetyReview},
		{"guidance falls through to active", rtypes.KindGuidance, StatusActive},
		{"unmapped kind falls through to active", rtypes.KindOther, StatusActive},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			corpus := record.NewCorpus([]*record.Record{
				regUpdate(t, "only", "FDA CardioStent X",
					"Manufacturer: MedCore Devices.", "FDA", tt.kind, base, rtypes.PriorityLow),
			})
			tl := newBuilder().BuildTimeline(context.Background(), corpus, "only")
			require.NotNil(t, tl)
			require.Len(t, tl.Events, 1)
			assert.Equal(t, tt.want, tl.CurrentStatus)
		})
	}
}

func TestBuildTimelineUnmappedKindUsesFallbackCategory(t *testing.T) {
	t.Parallel()

	corpus := record.NewCorpus([]*record.Record{
		regUpdate(t, "only", "FDA CardioStent X", "Manufacturer: MedCore Devices.",
			"FDA", rtypes.KindOther, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), rtypes.PriorityLow),
	})
	tl := newBuilder().BuildTimeline(context.Background(), corpus, "only")
	require.NotNil(t, tl)
	require.Len(t, tl.Events, 1)
	assert.Equal(t, "Regulatory Update", tl.Events[0].Category)
}

func TestBuildTimelineIncludesLegalProceedings(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	lc, err := record.NewFromDTO(rtypes.RecordDTO{
		ID:          "case",
		Title:       "CardioStent X Liability Suit",
		Body:        "Manufacturer: MedCore Devices. Product liability claim filed.",
		Authority:   "US District Court",
		Region:      "US",
		PublishedAt: base.AddDate(0, 6, 0),
		RecordType:  rtypes.TypeLegalCase,
	})
	require.NoError(t, err)

	corpus := record.NewCorpus([]*record.Record{
		regUpdate(t, "appr", "FDA Approves CardioStent X",
			"Manufacturer: MedCore Devices.", "FDA", rtypes.KindApproval, base, rtypes.PriorityLow),
		lc,
	})

	tl := newBuilder().BuildTimeline(context.Background(), corpus, "appr")
	require.NotNil(t, tl)
	require.Len(t, tl.Events, 2)
	assert.Equal(t, "Legal Proceeding", tl.Events[1].Category)
	// A legal proceeding does not change the lifecycle verdict by itself.
	assert.Equal(t, StatusActive, tl.CurrentStatus)
}

func TestBuildTimelineTargetWithoutSignalsStandsAlone(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	corpus := record.NewCorpus([]*record.Record{
		regUpdate(t, "solo", "Quarterly Enforcement Report", "No extractable signals here.",
			"FDA", rtypes.KindOther, base, rtypes.PriorityLow),
		regUpdate(t, "other", "FDA Approves CardioStent X",
			"Manufacturer: MedCore Devices.", "FDA", rtypes.KindApproval, base, rtypes.PriorityLow),
	})

	tl := newBuilder().BuildTimeline(context.Background(), corpus, "solo")
	require.NotNil(t, tl)
	require.Len(t, tl.Events, 1)
	assert.Equal(t, "solo", tl.Events[0].RecordID)
}
