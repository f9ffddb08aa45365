package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"FraudGuard/internal/domain/models"
	"FraudGuard/internal/service/ratelimit"
	"FraudGuard/internal/service/stream"
	"FraudGuard/internal/usecase"
	xhttp "FraudGuard/pkg/http"
	xlogger "FraudGuard/pkg/logger"
)

// DetectEchoHandler exposes the detection engine over HTTP.
type DetectEchoHandler struct {
	logger      *xlogger.Logger
	detector    *usecase.Detector
	history     *usecase.HistoryReader
	limiter     *ratelimit.Limiter
	broadcaster *stream.AlertBroadcaster
}

// NewDetectEchoHandler creates the handler. broadcaster may be nil when
// live fan-out is disabled.
func NewDetectEchoHandler(
	logger *xlogger.Logger,
	detector *usecase.Detector,
	history *usecase.HistoryReader,
	limiter *ratelimit.Limiter,
	broadcaster *stream.AlertBroadcaster,
) *DetectEchoHandler {
	return &DetectEchoHandler{
		logger:      logger,
		detector:    detector,
		history:     history,
		limiter:     limiter,
		broadcaster: broadcaster,
	}
}

func (h *DetectEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/detect", h.Detect)
	g.GET("/assessments", h.Assessments)

	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Ready)
	if h.broadcaster != nil {
		e.GET("/ws/alerts", h.broadcaster.HandleWS)
	}
}

// Detect evaluates one transaction and returns the risk assessment.
func (h *DetectEchoHandler) Detect(c echo.Context) error {
	req := &models.Transaction{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.limiter != nil && !h.limiter.AllowUser(req.UserID) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("detect rate limit exceeded"))
	}

	a, err := h.detector.Detect(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("detect usecase error",
			xlogger.Int64("user_id", req.UserID), xlogger.Error(err))
		switch {
		case errors.Is(err, models.ErrScoringUnavailable):
			return xhttp.AppErrorResponse(c,
				xhttp.ServiceUnavailableError("scoring service unavailable").WithError(err))
		case errors.Is(err, models.ErrInference):
			return xhttp.AppErrorResponse(c,
				xhttp.InternalError("inference failed").WithError(err))
		default:
			return xhttp.AppErrorResponse(c, err)
		}
	}
	return xhttp.SuccessResponse(c, a)
}

// Assessments returns the stored assessment history for one user.
func (h *DetectEchoHandler) Assessments(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.history.Enabled() {
		return xhttp.AppErrorResponse(c,
			xhttp.NotFoundError("assessment history is not enabled"))
	}

	rows, err := h.history.Query(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("history usecase error",
			xlogger.Int64("user_id", req.UserID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Health reports process liveness.
func (h *DetectEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Ready reports whether the engine can serve detect traffic, which
// requires the scoring sidecar to have its model loaded.
func (h *DetectEchoHandler) Ready(c echo.Context) error {
	if err := h.detector.Ready(c.Request().Context()); err != nil {
		h.logger.Warn("readiness probe failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c,
			xhttp.ServiceUnavailableError("scoring service not ready").WithError(err))
	}
	if err := h.history.Health(c.Request().Context()); err != nil {
		h.logger.Warn("assessment store not ready", xlogger.Error(err))
		return xhttp.AppErrorResponse(c,
			xhttp.ServiceUnavailableError("assessment store not ready").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ready"})
}
