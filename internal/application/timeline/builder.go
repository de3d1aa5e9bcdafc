// Package timeline implements the regulatory timeline builder: given one
// record's device cluster it orders related events chronologically,
// classifies each into a lifecycle stage, and derives a current-status
// verdict from the most recent event.
package timeline

import (
	"context"
	"sort"
	"time"

	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/internal/intelligence/textkit"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Impact grades how consequential a timeline event is.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Event is one lifecycle entry derived from a corpus record.
type Event struct {
	RecordID  string    `json:"record_id"`
	Date      time.Time `json:"date"`
	Category  string    `json:"event_category"`
	Authority string    `json:"authority"`
	Status    string    `json:"status"`
	Impact    Impact    `json:"impact"`
}

// Timeline is the ordered regulatory history of one device cluster.  Events
// are ascending by date; CurrentStatus derives solely from the last event.
type Timeline struct {
	RecordID      string  `json:"record_id"`
	DeviceName    string  `json:"device_name,omitempty"`
	Manufacturer  string  `json:"manufacturer,omitempty"`
	Events        []Event `json:"events"`
	CurrentStatus string  `json:"current_status"`
}

// Lifecycle status verdicts.
const (
	StatusUnderSafetyReview = "Under Safety Review"
	StatusApproved          = "Approved"
	StatusRegistered        = "Registered"
	StatusActive            = "Active"
)

// categoryFallback is used for record types the lookup table does not cover.
const categoryFallback = "Regulatory Update"

// eventCategories maps a regulatory kind onto its lifecycle stage label.
var eventCategories = map[rtypes.RegulatoryKind]string{
	rtypes.KindApproval:     "Approval",
	rtypes.KindClearance:    "Clearance",
	rtypes.KindRecall:       "Recall",
	rtypes.KindSafetyAlert:  "Safety Alert",
	rtypes.KindRegistration: "Registration",
	rtypes.KindGuidance:     "Guidance Update",
}

// categoryStatuses maps an event category onto the status verdict it implies.
var categoryStatuses = map[string]string{
	"Approval":     StatusApproved,
	"Clearance":    StatusApproved,
	"Recall":       StatusUnderSafetyReview,
	"Safety Alert": StatusUnderSafetyReview,
	"Registration": StatusRegistered,
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service builds device timelines from a corpus snapshot.
type Service interface {
	// BuildTimeline assembles the timeline anchored on recordID.  It returns
	// nil (not an error) when the record is absent from the snapshot,
	// signalling "unknown device" to the caller.
	BuildTimeline(ctx context.Context, corpus *record.Corpus, recordID string) *Timeline
}

// Deps holds the service dependencies.  The manufacturer bar is stricter
// than the device-name bar because manufacturer names are less ambiguous
// signals.
type Deps struct {
	DeviceNameThreshold   float64
	ManufacturerThreshold float64
	Logger                logging.Logger
}

type serviceImpl struct {
	deviceNameThreshold   float64
	manufacturerThreshold float64
	logger                logging.Logger
}

// NewService creates a timeline builder.
func NewService(deps Deps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		deviceNameThreshold:   deps.DeviceNameThreshold,
		manufacturerThreshold: deps.ManufacturerThreshold,
		logger:                logger,
	}
}

func (s *serviceImpl) BuildTimeline(_ context.Context, corpus *record.Corpus, recordID string) *Timeline {
	if corpus == nil {
		return nil
	}
	target, ok := corpus.Get(recordID)
	if !ok {
		return nil
	}

	deviceName, _ := textkit.ExtractDeviceName(target.Title)
	manufacturer, _ := textkit.ExtractManufacturer(target.ComparableText())
	deviceTokens := textkit.Normalize(deviceName)
	manufacturerTokens := textkit.Normalize(manufacturer)

	events := make([]Event, 0, 8)
	for _, r := range corpus.All() {
		if r.ID != target.ID && !s.related(r, deviceTokens, manufacturerTokens) {
			continue
		}
		events = append(events, toEvent(r))
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].RecordID < events[j].RecordID
	})

	tl := &Timeline{
		RecordID:      target.ID,
		DeviceName:    deviceName,
		Manufacturer:  manufacturer,
		Events:        events,
		CurrentStatus: StatusActive,
	}
	if len(events) > 0 {
		tl.CurrentStatus = events[len(events)-1].Status
	}

	s.logger.Debug("timeline assembled",
		logging.String("record_id", recordID),
		logging.Int("events", len(events)),
		logging.String("status", tl.CurrentStatus),
	)
	return tl
}

// related reports whether a candidate record belongs to the target's device
// cluster: device-name similarity above the device bar, or manufacturer
// similarity above the stricter manufacturer bar.
func (s *serviceImpl) related(r *record.Record, deviceTokens, manufacturerTokens map[string]struct{}) bool {
	if len(deviceTokens) > 0 {
		if name, ok := textkit.ExtractDeviceName(r.Title); ok {
			if textkit.JaccardSets(deviceTokens, textkit.Normalize(name)) > s.deviceNameThreshold {
				return true
			}
		}
	}
	if len(manufacturerTokens) > 0 {
		if m, ok := textkit.ExtractManufacturer(r.ComparableText()); ok {
			if textkit.JaccardSets(manufacturerTokens, textkit.Normalize(m)) > s.manufacturerThreshold {
				return true
			}
		}
	}
	return false
}

func toEvent(r *record.Record) Event {
	category := categoryFor(r)
	status, ok := categoryStatuses[category]
	if !ok {
		status = StatusActive
	}
	return Event{
		RecordID:  r.ID,
		Date:      r.PublishedAtUTC(),
		Category:  category,
		Authority: r.Authority,
		Status:    status,
		Impact:    impactFor(r.Priority),
	}
}

func categoryFor(r *record.Record) string {
	if r.IsLegalCase() {
		return "Legal Proceeding"
	}
	if c, ok := eventCategories[r.RegulatoryKind]; ok {
		return c
	}
	return categoryFallback
}

func impactFor(p rtypes.Priority) Impact {
	switch p {
	case rtypes.PriorityCritical, rtypes.PriorityHigh:
		return ImpactHigh
	case rtypes.PriorityMedium:
		return ImpactMedium
	default:
		return ImpactLow
	}
}
