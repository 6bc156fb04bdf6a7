package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"door-alarm-backend/internal/pipeline"
	"door-alarm-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, p *pipeline.Pipeline, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		pipeline: p,
		webpush:  webpushOptions,
	}
}
