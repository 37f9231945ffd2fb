package polyvoice

import (
	"fmt"
	"log/slog"
)

// ErrorHandler receives errors the pool machinery cannot return to a
// caller, such as slow dispatcher operations.
type ErrorHandler interface {
	HandleError(error)
}

// DefaultErrorHandler logs errors through log/slog.
type DefaultErrorHandler struct{}

// HandleError implements ErrorHandler by logging at error level.
func (h *DefaultErrorHandler) HandleError(err error) {
	slog.Error("polyvoice", "err", err)
}

// LoggingErrorHandler wraps another handler and additionally invokes a
// caller-supplied logging function.
type LoggingErrorHandler struct {
	underlying ErrorHandler
	logger     func(error)
}

// NewLoggingErrorHandler creates a new logging error handler.
func NewLoggingErrorHandler(underlying ErrorHandler, logger func(error)) *LoggingErrorHandler {
	return &LoggingErrorHandler{
		underlying: underlying,
		logger:     logger,
	}
}

// HandleError implements ErrorHandler with logging.
func (h *LoggingErrorHandler) HandleError(err error) {
	if h.logger != nil {
		h.logger(err)
	}
	if h.underlying != nil {
		h.underlying.HandleError(err)
	}
}

// PanicErrorHandler panics on any error (useful for development).
type PanicErrorHandler struct{}

// HandleError implements ErrorHandler by panicking.
func (h *PanicErrorHandler) HandleError(err error) {
	panic(fmt.Sprintf("polyvoice error: %v", err))
}
