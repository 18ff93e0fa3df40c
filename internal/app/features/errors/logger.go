// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/enrolldesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure and shows the operator a generic page.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// HandlerError logs err with the request path and renders a 500 page
// carrying msg. Backend details are never shown.
func (e *ErrorLogger) HandlerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.Log.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(w, r, "Something went wrong", "/"),
		Message: msg,
	}
	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page", data)
}
