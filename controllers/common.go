package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/store"
	"github.com/cppla/deltatracker/utils"
)

// eventRequest is the optional body of every event endpoint.
type eventRequest struct {
	Timestamp *time.Time `json:"timestamp"`
}

// bindOptionalJSON binds the body into obj when one was sent.
func bindOptionalJSON(ctx *gin.Context, obj interface{}) error {
	if ctx.Request.Body == nil || ctx.Request.ContentLength == 0 {
		return nil
	}
	return ctx.ShouldBindJSON(obj)
}

// eventTime returns the client supplied timestamp, else the current time.
func eventTime(ts *time.Time) time.Time {
	if ts != nil && !ts.IsZero() {
		return *ts
	}
	return time.Now()
}

// respondEngineError maps engine and store errors onto the response envelope.
func respondEngineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, achievements.ErrInvalidTimestamp):
		utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
	case errors.Is(err, achievements.ErrStaleEvent):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, achievements.ErrUnknownAchievement):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, "not found")
	case errors.Is(err, store.ErrUnknownCounterKey), errors.Is(err, store.ErrUnknownEventKind):
		utils.Error(ctx, http.StatusBadRequest, 40011, err.Error())
	default:
		utils.Sugar.Errorw("request failed", "path", ctx.FullPath(), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "internal error")
	}
}

func invalidateStats() {
	utils.InvalidateByPrefix(utils.StatsCachePrefix)
}
