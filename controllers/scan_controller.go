package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/analytics"
	"github.com/cppla/deltatracker/config"
	"github.com/cppla/deltatracker/store"
	"github.com/cppla/deltatracker/utils"
)

const maxHistoryLimit = 500

// ScanController records confirmed balance readings and serves their history.
type ScanController struct {
	engine *achievements.Engine
	stats  *analytics.Aggregator
	port   store.Port
}

// NewScanController creates a ScanController.
func NewScanController(engine *achievements.Engine, stats *analytics.Aggregator, port store.Port) *ScanController {
	return &ScanController{engine: engine, stats: stats, port: port}
}

type createScanRequest struct {
	RawText      string           `json:"raw_text"`
	NumericValue *decimal.Decimal `json:"numeric_value"`
	Timestamp    *time.Time       `json:"timestamp"`
}

// Create stores a scan. numeric_value wins over raw_text; raw_text alone is parsed.
func (s *ScanController) Create(ctx *gin.Context) {
	var req createScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	raw := utils.SanitizeText(req.RawText)
	var value decimal.Decimal
	switch {
	case req.NumericValue != nil:
		value = *req.NumericValue
	case raw != "":
		v, err := utils.ParseBalance(raw)
		if err != nil {
			utils.Error(ctx, http.StatusUnprocessableEntity, 42201, err.Error())
			return
		}
		value = v
	default:
		utils.Error(ctx, http.StatusBadRequest, 40002, "raw_text or numeric_value is required")
		return
	}
	if raw == "" {
		raw = utils.FormatBalance(value)
	}

	rec, unlocks, err := s.engine.RecordScan(ctx.Request.Context(), eventTime(req.Timestamp), raw, value)
	if len(unlocks) > 0 || err == nil {
		invalidateStats()
	}
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"scan":     rec,
		"balance":  utils.FormatBalance(rec.NumericValue),
		"unlocked": utils.NonNil(unlocks),
	})
}

// History returns the newest scans with their deltas.
func (s *ScanController) History(ctx *gin.Context) {
	limit := config.Get().HistoryLimit
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			utils.Error(ctx, http.StatusBadRequest, 40003, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}
	rows, err := s.stats.History(ctx.Request.Context(), limit)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": rows, "limit": limit})
}

// Export downloads the full scan history as an xlsx workbook.
func (s *ScanController) Export(ctx *gin.Context) {
	scans, err := s.port.GetAllScans(ctx.Request.Context())
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	// DeltaRows wants newest first
	for i, j := 0, len(scans)-1; i < j; i, j = i+1, j-1 {
		scans[i], scans[j] = scans[j], scans[i]
	}
	loc := s.stats.Location()
	rows := make([][]interface{}, 0, len(scans))
	for _, r := range analytics.DeltaRows(scans) {
		rows = append(rows, []interface{}{
			r.Scan.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
			r.Scan.RawText,
			r.Scan.NumericValue.InexactFloat64(),
			r.Balance,
			r.DeltaText,
			r.Direction,
		})
	}
	buf, err := utils.WriteXLSX("Scans", []string{"Time", "Raw text", "Value", "Balance", "Delta", "Direction"}, rows)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to build export")
		return
	}
	name := fmt.Sprintf("balance_history_%s.xlsx", time.Now().In(loc).Format("20060102_150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Delete removes one scan by id.
func (s *ScanController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid scan id")
		return
	}
	if err := s.port.DeleteScan(ctx.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "scan not found")
			return
		}
		respondEngineError(ctx, err)
		return
	}
	invalidateStats()
	utils.Success(ctx, gin.H{"deleted": id})
}

// Clear wipes the scan log. Achievements and counters are kept.
func (s *ScanController) Clear(ctx *gin.Context) {
	n, err := s.port.ClearScans(ctx.Request.Context())
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	invalidateStats()
	utils.Sugar.Warnw("scan history cleared", "deleted", n)
	utils.Success(ctx, gin.H{"deleted": n})
}
