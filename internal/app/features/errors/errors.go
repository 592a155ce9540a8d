// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger writes JSON error responses for server-side failures while
// logging the underlying error with request context. Handlers keep the
// details out of responses; clients only see the user-facing message.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger backed by the given logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err with request context and writes a 500 response
// carrying userMsg. logMsg should describe the failed operation in terms
// useful for debugging ("find collection failed"), not for end users.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	WriteError(w, http.StatusInternalServerError, userMsg)
}
