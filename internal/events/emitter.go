package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/lexis/internal/platform/logger"
)

// InMemoryEventEmitter dispatches events to handlers registered in memory.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(log *slog.Logger) *InMemoryEventEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   log.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent publishes the given event to all registered handlers.
// Every handler runs even if an earlier one fails; the first error is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", string(event.Type)))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// LoggingHandler writes one structured log line per event.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler.
func NewLoggingHandler(log *slog.Logger) *LoggingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingHandler{logger: log.With(slog.String("component", "lifecycle"))}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *Event) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("vocabulary lifecycle event",
		slog.String("event_type", string(event.Type)),
		slog.String("entry_id", event.EntryID.String()),
		slog.String("language", event.Language),
		slog.String("word", event.Word))
	return nil
}
