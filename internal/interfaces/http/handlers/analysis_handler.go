package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
	rtypes "github.com/turtacn/MedReg-Intelligence/pkg/types/record"
)

// AnalysisHandler exposes the analysis engine over HTTP.
type AnalysisHandler struct {
	engine engine.Engine
	logger logging.Logger
}

func NewAnalysisHandler(eng engine.Engine, log logging.Logger) *AnalysisHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AnalysisHandler{engine: eng, logger: log}
}

// RegisterRoutes mounts the analysis routes on an API group.
func (h *AnalysisHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/analysis/device-mappings", h.MapDevices)
	api.GET("/analysis/timeline/:recordID", h.Timeline)
	api.POST("/analysis/legal-corpus", h.AnalyzeLegalCorpus)
	api.POST("/analysis/evaluate", h.Evaluate)
	api.GET("/analysis/trends", h.Trends)
	api.POST("/analysis/full", h.AnalyzeAll)
}

// MapDevices handles POST /api/v1/analysis/device-mappings.
func (h *AnalysisHandler) MapDevices(c *gin.Context) {
	mappings, err := h.engine.MapDevicesAcrossJurisdictions(c.Request.Context())
	if err != nil {
		h.logger.Error("device mapping failed", logging.Err(err))
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, mappings)
}

// Timeline handles GET /api/v1/analysis/timeline/:recordID.
func (h *AnalysisHandler) Timeline(c *gin.Context) {
	recordID := c.Param("recordID")
	if recordID == "" {
		respondValidationError(c, "recordID is required")
		return
	}

	tl, err := h.engine.BuildTimeline(c.Request.Context(), recordID)
	if err != nil {
		h.logger.Error("timeline build failed",
			logging.String("record_id", recordID),
			logging.Err(err),
		)
		respondError(c, err)
		return
	}
	if tl == nil {
		respondError(c, errors.New(errors.ErrCodeRecordNotFound, "record not found").WithDetail(recordID))
		return
	}
	respondOK(c, http.StatusOK, tl)
}

// AnalyzeLegalCorpus handles POST /api/v1/analysis/legal-corpus.
func (h *AnalysisHandler) AnalyzeLegalCorpus(c *gin.Context) {
	analysis, err := h.engine.AnalyzeLegalCorpus(c.Request.Context())
	if err != nil {
		h.logger.Error("legal corpus analysis failed", logging.Err(err))
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, analysis)
}

// Evaluate handles POST /api/v1/analysis/evaluate.  The body is a single
// record DTO; the record_type field selects the evaluation path.  Malformed
// bodies still produce a verdict, routed to board review by the engine.
func (h *AnalysisHandler) Evaluate(c *gin.Context) {
	var dto rtypes.RecordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondValidationError(c, "invalid record payload: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	var verdict interface{}
	switch dto.RecordType {
	case rtypes.TypeLegalCase:
		verdict = h.engine.EvaluateLegalCase(ctx, dto)
	default:
		verdict = h.engine.EvaluateRegulatoryUpdate(ctx, dto)
	}
	respondOK(c, http.StatusOK, verdict)
}

// Trends handles GET /api/v1/analysis/trends?window_days=N.
func (h *AnalysisHandler) Trends(c *gin.Context) {
	windowDays := 0
	if v := c.Query("window_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondValidationError(c, "window_days must be a non-negative integer")
			return
		}
		windowDays = n
	}

	report, err := h.engine.AnalyzeTrends(c.Request.Context(), windowDays)
	if err != nil {
		h.logger.Error("trend analysis failed", logging.Err(err))
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// AnalyzeAll handles POST /api/v1/analysis/full.
func (h *AnalysisHandler) AnalyzeAll(c *gin.Context) {
	result, err := h.engine.AnalyzeAll(c.Request.Context())
	if err != nil {
		h.logger.Error("full analysis failed", logging.Err(err))
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
