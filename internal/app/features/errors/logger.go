// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and renders a user-facing error page.
// The log line carries the internal message and error; the page only ever
// shows userMsg.
type ErrorLogger struct {
	Log    *zap.Logger
	render viewdata.RenderFunc
}

// NewErrorLogger creates an ErrorLogger that renders with the template engine.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger, render: viewdata.Render}
}

// UseRenderer replaces the template renderer.
func (e *ErrorLogger) UseRenderer(fn viewdata.RenderFunc) {
	e.render = fn
}

// LogServerError logs at error level and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg, requestFields(r, err)...)
	if userMsg == "" {
		userMsg = "Something went wrong."
	}
	renderError(e.render, w, r, http.StatusInternalServerError, "Server error", userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg, requestFields(r, err)...)
	if userMsg == "" {
		userMsg = "The request could not be processed."
	}
	renderError(e.render, w, r, http.StatusBadRequest, "Bad request", userMsg, backURL)
}

// LogTooManyRequests logs at info level and renders a 429 page.
func (e *ErrorLogger) LogTooManyRequests(w http.ResponseWriter, r *http.Request, msg, userMsg, backURL string) {
	e.Log.Info(msg, requestFields(r, nil)...)
	renderError(e.render, w, r, http.StatusTooManyRequests, "Slow down", userMsg, backURL)
}

func requestFields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}
