// internal/app/features/diagnostics/handler.go
package diagnostics

import (
	uierrors "github.com/dalemusser/aboutadmin/internal/app/features/errors"
	diagstore "github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler serves the diagnostics list.
type Handler struct {
	Store  *diagstore.Store // nil when diagnostics are not persisted
	Mode   string
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	render viewdata.RenderFunc
}

// NewHandler constructs a diagnostics Handler. store may be nil.
func NewHandler(store *diagstore.Store, mode string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  store,
		Mode:   mode,
		Log:    logger,
		ErrLog: errLog,
		render: viewdata.Render,
	}
}

// UseRenderer replaces the template renderer.
func (h *Handler) UseRenderer(fn viewdata.RenderFunc) {
	h.render = fn
}
