package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/quotes"
	"github.com/cppla/deltatracker/utils"
)

type eventHandler func(ctx context.Context, ts time.Time) ([]achievements.Unlock, error)

// EventController forwards overlay button presses and app lifecycle events to the engine.
type EventController struct {
	engine *achievements.Engine
	quotes *quotes.Pool
}

// NewEventController creates an EventController.
func NewEventController(engine *achievements.Engine, pool *quotes.Pool) *EventController {
	return &EventController{engine: engine, quotes: pool}
}

func (e *EventController) fire(name string, fn eventHandler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req eventRequest
		if err := bindOptionalJSON(ctx, &req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
			return
		}
		unlocks, err := fn(ctx.Request.Context(), eventTime(req.Timestamp))
		invalidateStats()
		if err != nil {
			respondEngineError(ctx, err)
			return
		}
		utils.Success(ctx, gin.H{"event": name, "unlocked": utils.NonNil(unlocks)})
	}
}

// Tilt handles POST /events/tilt.
func (e *EventController) Tilt() gin.HandlerFunc { return e.fire("tilt", e.engine.PressTilt) }

// Cheater handles POST /events/cheater.
func (e *EventController) Cheater() gin.HandlerFunc { return e.fire("cheater", e.engine.MarkCheater) }

// UndoCheater handles POST /events/cheater/undo.
func (e *EventController) UndoCheater() gin.HandlerFunc {
	return e.fire("cheater_undo", e.engine.UndoCheater)
}

// Red handles POST /events/red.
func (e *EventController) Red() gin.HandlerFunc { return e.fire("red", e.engine.PressRed) }

// UndoRed handles POST /events/red/undo.
func (e *EventController) UndoRed() gin.HandlerFunc { return e.fire("red_undo", e.engine.UndoRed) }

// Launch handles POST /events/launch.
func (e *EventController) Launch() gin.HandlerFunc { return e.fire("launch", e.engine.AppLaunched) }

// Activate handles POST /events/activate.
func (e *EventController) Activate() gin.HandlerFunc {
	return e.fire("activate", e.engine.AppActivated)
}

// RandomQuote draws a quote and counts it as read.
func (e *EventController) RandomQuote(ctx *gin.Context) {
	q := e.quotes.Next()
	unlocks, err := e.engine.ViewQuote(ctx.Request.Context(), time.Now())
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	invalidateStats()
	utils.Success(ctx, gin.H{"quote": q, "unlocked": utils.NonNil(unlocks)})
}
