package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/utils"
)

// AchievementController exposes the catalog, anti-spam taps and the unlock stream.
type AchievementController struct {
	engine *achievements.Engine
}

// NewAchievementController creates an AchievementController.
func NewAchievementController(engine *achievements.Engine) *AchievementController {
	return &AchievementController{engine: engine}
}

// List returns the catalog in ?lang=en|ru merged with unlock state.
func (a *AchievementController) List(ctx *gin.Context) {
	lang := strings.ToLower(strings.TrimSpace(ctx.DefaultQuery("lang", "en")))
	views, err := a.engine.Achievements(ctx.Request.Context(), lang)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	unlocked, total, err := a.engine.Progress(ctx.Request.Context())
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": views, "unlocked": unlocked, "total": total})
}

// Progress returns the unlocked/total pair.
func (a *AchievementController) Progress(ctx *gin.Context) {
	unlocked, total, err := a.engine.Progress(ctx.Request.Context())
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"unlocked": unlocked, "total": total})
}

// Tap records a tap on a locked achievement tile.
func (a *AchievementController) Tap(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid achievement id")
		return
	}
	var req eventRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	unlocks, err := a.engine.TapLockedAchievement(ctx.Request.Context(), eventTime(req.Timestamp), uint(id))
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"unlocked": utils.NonNil(unlocks)})
}

// EasterEgg records the hidden easter egg click.
func (a *AchievementController) EasterEgg(ctx *gin.Context) {
	var req eventRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	unlocks, err := a.engine.ClickEasterEgg(ctx.Request.Context(), eventTime(req.Timestamp))
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"unlocked": utils.NonNil(unlocks)})
}

// Reset re-locks everything. Debug only.
func (a *AchievementController) Reset(ctx *gin.Context) {
	if err := a.engine.ResetAll(ctx.Request.Context()); err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "achievements reset"})
}

// Stream pushes unlock notifications as server-sent events until the client leaves.
func (a *AchievementController) Stream(ctx *gin.Context) {
	hub := a.engine.Hub()
	if hub == nil {
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "notifications disabled")
		return
	}
	id, ch, cancel := hub.Subscribe()
	defer cancel()
	utils.Sugar.Debugw("unlock stream opened", "subscriber", id)

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.SSEvent("ready", gin.H{"subscriber": id})
	ctx.Writer.Flush()

	done := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case u, ok := <-ch:
			if !ok {
				return false
			}
			ctx.SSEvent("unlock", u)
			return true
		}
	})
	utils.Sugar.Debugw("unlock stream closed", "subscriber", id)
}
