package handlers

import (
	"go.uber.org/zap"

	"github.com/basehaptic/relayapi/bus"
	"github.com/basehaptic/relayapi/ingest"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	engine  *ingest.Engine
	bus     *bus.Bus
	log     *zap.Logger
	resyncK int
}

// New creates a Handler. resyncK is how many recent events a fresh stream
// subscriber receives before going live.
func New(engine *ingest.Engine, b *bus.Bus, log *zap.Logger, resyncK int) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if resyncK < 1 {
		resyncK = 20
	}
	return &Handler{engine: engine, bus: b, log: log, resyncK: resyncK}
}
