package stage

import (
	"context"
	"log/slog"

	"reelsmith/internal/queue"
)

// Handler describes the contract the pipeline runner needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Run) error
	Execute(context.Context, *queue.Run) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by handlers that accept a per-run logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
