package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/analytics"
	"github.com/cppla/deltatracker/config"
	"github.com/cppla/deltatracker/gameday"
	"github.com/cppla/deltatracker/store"
	"github.com/cppla/deltatracker/utils"
)

// StatsController serves the dashboard and per-day statistics.
type StatsController struct {
	stats *analytics.Aggregator
	port  store.Port
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats *analytics.Aggregator, port store.Port) *StatsController {
	return &StatsController{stats: stats, port: port}
}

// Dashboard returns the summary for the current game-day, cached in redis when enabled.
func (s *StatsController) Dashboard(ctx *gin.Context) {
	now := time.Now()
	key := utils.StatsCachePrefix + "dashboard:" + gameday.Label(now, s.stats.Location())

	var sum analytics.Summary
	if utils.CacheGetJSON(key, &sum) {
		utils.Success(ctx, sum)
		return
	}
	sum, err := s.stats.Dashboard(ctx.Request.Context(), now)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.CacheSetJSON(key, sum, config.Get().CacheTTL())
	utils.Success(ctx, sum)
}

// Daily returns statistics for ?date=YYYY-MM-DD, today's game-day by default.
func (s *StatsController) Daily(ctx *gin.Context) {
	at := time.Now()
	if v := strings.TrimSpace(ctx.Query("date")); v != "" {
		start, err := gameday.Parse(v, s.stats.Location())
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40005, "date must be YYYY-MM-DD")
			return
		}
		at = start
	}
	st, err := s.stats.DailyStats(ctx.Request.Context(), at)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, st)
}

// Counters returns the current daily counters.
func (s *StatsController) Counters(ctx *gin.Context) {
	counters, err := s.port.GetDailyCounters(ctx.Request.Context())
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, counters)
}
