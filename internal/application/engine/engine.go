// Package engine exposes the analysis engine facade: snapshot the record
// store, run the analysis services over the frozen corpus, and hand verdicts
// to the publication pipeline.  The engine itself is an in-process library;
// transport surfaces live in the interface layer.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/MedReg-Intelligence/internal/application/approval"
	"github.com/turtacn/MedReg-Intelligence/internal/application/entitymap"
	"github.com/turtacn/MedReg-Intelligence/internal/application/legal"
	"github.com/turtacn/MedReg-Intelligence/internal/application/timeline"
	"github.com/turtacn/MedReg-Intelligence/internal/application/trends"
	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// VerdictPublisher hands approval verdicts to the publication pipeline.
type VerdictPublisher interface {
	PublishVerdict(ctx context.Context, verdict approval.Verdict) error
}

// AnalysisCache caches derived analysis artifacts between passes.
type AnalysisCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// GraphExporter persists the derived relationship graph.
type GraphExporter interface {
	ExportMappings(ctx context.Context, mappings []entitymap.EntityMapping) error
	ExportRelationships(ctx context.Context, relationships []legal.CaseRelationship) error
}

// Metrics records engine activity for monitoring.
type Metrics interface {
	ObserveAnalysis(operation string, duration time.Duration)
	CountVerdict(level string)
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// FullAnalysis bundles the outputs of one complete analysis pass over a
// single corpus snapshot.
type FullAnalysis struct {
	Mappings    []entitymap.EntityMapping `json:"mappings"`
	Legal       *legal.Analysis           `json:"legal"`
	Trends      *trends.Report            `json:"trends"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// Engine is the analysis facade consumed by the interface layers and the
// worker.
type Engine interface {
	// MapDevicesAcrossJurisdictions snapshots the store and clusters
	// records describing the same device across jurisdictions.
	MapDevicesAcrossJurisdictions(ctx context.Context) ([]entitymap.EntityMapping, error)

	// BuildTimeline assembles the regulatory timeline anchored on recordID.
	// A nil, nil return means the record is unknown; the caller keeps the
	// not-found versus found-but-empty distinction.
	BuildTimeline(ctx context.Context, recordID string) (*timeline.Timeline, error)

	// AnalyzeLegalCorpus runs theme, relationship, precedent, and conflict
	// analysis over the store's legal cases.
	AnalyzeLegalCorpus(ctx context.Context) (*legal.Analysis, error)

	// EvaluateRegulatoryUpdate scores one regulatory-update record and, when
	// a publisher is wired, feeds the verdict to the publication pipeline.
	EvaluateRegulatoryUpdate(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict

	// EvaluateLegalCase scores one legal-case record.
	EvaluateLegalCase(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict

	// AnalyzeTrends builds the trend report for the trailing window.
	AnalyzeTrends(ctx context.Context, windowDays int) (*trends.Report, error)

	// AnalyzeAll runs mapping, legal, and trend analysis over one shared
	// snapshot.
	AnalyzeAll(ctx context.Context) (*FullAnalysis, error)
}

// Deps wires the engine.  Store and Config are required; Publisher, Cache,
// Graph, and Metrics are optional and skipped when nil.
type Deps struct {
	Store     record.Store
	Config    config.EngineConfig
	Logger    logging.Logger
	Publisher VerdictPublisher
	Cache     AnalysisCache
	Graph     GraphExporter
	Metrics   Metrics
	Now       func() time.Time
}

type engineImpl struct {
	store     record.Store
	mapper    entitymap.Service
	timelines timeline.Service
	legal     legal.Service
	approval  approval.Service
	trends    trends.Service
	logger    logging.Logger
	publisher VerdictPublisher
	cache     AnalysisCache
	graph     GraphExporter
	metrics   Metrics
	now       func() time.Time
	cacheTTL  time.Duration
}

// New assembles the engine from its configuration.
func New(deps Deps) (Engine, error) {
	if deps.Store == nil {
		return nil, errors.InvalidParam("engine requires a record store")
	}
	if err := deps.Config.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &engineImpl{
		store: deps.Store,
		mapper: entitymap.NewService(entitymap.Deps{
			Threshold: deps.Config.MappingThreshold,
			Logger:    logger.Named("entitymap"),
			Now:       now,
		}),
		timelines: timeline.NewService(timeline.Deps{
			DeviceNameThreshold:   deps.Config.DeviceNameThreshold,
			ManufacturerThreshold: deps.Config.ManufacturerThreshold,
			Logger:                logger.Named("timeline"),
		}),
		legal: legal.NewService(legal.Deps{
			MinStrength: deps.Config.RelationshipMinStrength,
			Logger:      logger.Named("legal"),
		}),
		approval: approval.NewService(approval.Deps{
			ReliabilityOverrides: deps.Config.AuthorityReliability,
			Logger:               logger.Named("approval"),
			Now:                  now,
		}),
		trends: trends.NewService(trends.Deps{
			DefaultWindowDays: deps.Config.TrendWindowDays,
			TopK:              deps.Config.TrendTopK,
			Logger:            logger.Named("trends"),
			Now:               now,
		}),
		logger:    logger,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		graph:     deps.Graph,
		metrics:   deps.Metrics,
		now:       now,
		cacheTTL:  15 * time.Minute,
	}, nil
}

func (e *engineImpl) MapDevicesAcrossJurisdictions(ctx context.Context) ([]entitymap.EntityMapping, error) {
	started := e.now()
	corpus, err := record.Snapshot(ctx, e.store)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotFailed, "snapshot for device mapping failed")
	}
	mappings := e.mapper.MapDevices(ctx, corpus)
	e.observe("map_devices", started)

	if e.graph != nil {
		if err := e.graph.ExportMappings(ctx, mappings); err != nil {
			e.logger.Warn("graph export of device mappings failed", logging.Err(err))
		}
	}
	return mappings, nil
}

func (e *engineImpl) BuildTimeline(ctx context.Context, recordID string) (*timeline.Timeline, error) {
	started := e.now()
	corpus, err := record.Snapshot(ctx, e.store)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotFailed, "snapshot for timeline failed")
	}
	tl := e.timelines.BuildTimeline(ctx, corpus, recordID)
	e.observe("build_timeline", started)
	return tl, nil
}

func (e *engineImpl) AnalyzeLegalCorpus(ctx context.Context) (*legal.Analysis, error) {
	started := e.now()
	cases, err := e.store.ListLegalCases(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotFailed, "snapshot for legal analysis failed")
	}
	analysis := e.legal.AnalyzeCorpus(ctx, cases)
	e.observe("analyze_legal", started)

	if e.graph != nil {
		if err := e.graph.ExportRelationships(ctx, analysis.Relationships); err != nil {
			e.logger.Warn("graph export of case relationships failed", logging.Err(err))
		}
	}
	return analysis, nil
}

func (e *engineImpl) EvaluateRegulatoryUpdate(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict {
	return e.evaluate(ctx, dto, true)
}

func (e *engineImpl) EvaluateLegalCase(ctx context.Context, dto rtypes.RecordDTO) approval.Verdict {
	return e.evaluate(ctx, dto, false)
}

func (e *engineImpl) evaluate(ctx context.Context, dto rtypes.RecordDTO, regulatory bool) approval.Verdict {
	started := e.now()
	r, convErr := record.NewFromDTO(dto)
	if convErr != nil {
		r = nil
	}

	var verdict approval.Verdict
	if regulatory {
		verdict = e.approval.EvaluateRegulatoryUpdate(ctx, r)
	} else {
		verdict = e.approval.EvaluateLegalCase(ctx, r)
	}
	if verdict.RecordID == "" {
		verdict.RecordID = dto.ID
	}
	if convErr != nil {
		verdict.Reasoning = append(verdict.Reasoning,
			fmt.Sprintf("input rejected: %s", convErr.Error()))
	}
	e.observe("evaluate", started)
	if e.metrics != nil {
		e.metrics.CountVerdict(string(verdict.ReviewLevel))
	}

	if e.publisher != nil {
		if err := e.publisher.PublishVerdict(ctx, verdict); err != nil {
			e.logger.Warn("verdict publication failed",
				logging.String("record_id", verdict.RecordID), logging.Err(err))
		}
	}
	return verdict
}

func (e *engineImpl) AnalyzeTrends(ctx context.Context, windowDays int) (*trends.Report, error) {
	started := e.now()
	cacheKey := fmt.Sprintf("trends:%d", windowDays)
	if e.cache != nil {
		var cached trends.Report
		if hit, err := e.cache.Get(ctx, cacheKey, &cached); err != nil {
			e.logger.Warn("trend cache read failed", logging.Err(err))
		} else if hit {
			return &cached, nil
		}
	}

	corpus, err := record.Snapshot(ctx, e.store)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotFailed, "snapshot for trend analysis failed")
	}
	report := e.trends.AnalyzeTrends(ctx, corpus, windowDays)
	e.observe("analyze_trends", started)

	if e.cache != nil {
		if err := e.cache.Set(ctx, cacheKey, report, e.cacheTTL); err != nil {
			e.logger.Warn("trend cache write failed", logging.Err(err))
		}
	}
	return report, nil
}

func (e *engineImpl) AnalyzeAll(ctx context.Context) (*FullAnalysis, error) {
	started := e.now()
	corpus, err := record.Snapshot(ctx, e.store)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotFailed, "snapshot for full analysis failed")
	}

	full := &FullAnalysis{
		Mappings:    e.mapper.MapDevices(ctx, corpus),
		Legal:       e.legal.AnalyzeCorpus(ctx, corpus.LegalCases()),
		Trends:      e.trends.AnalyzeTrends(ctx, corpus, 0),
		GeneratedAt: e.now().UTC(),
	}
	e.observe("analyze_all", started)

	if e.graph != nil {
		if err := e.graph.ExportMappings(ctx, full.Mappings); err != nil {
			e.logger.Warn("graph export of device mappings failed", logging.Err(err))
		}
		if err := e.graph.ExportRelationships(ctx, full.Legal.Relationships); err != nil {
			e.logger.Warn("graph export of case relationships failed", logging.Err(err))
		}
	}
	return full, nil
}

func (e *engineImpl) observe(operation string, started time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveAnalysis(operation, e.now().Sub(started))
	}
}
