package api

import (
	"context"
	"time"

	"RegimePulse/internal/domain/models"
	drepo "RegimePulse/internal/domain/repository"
	"RegimePulse/internal/usecase"
	xhttp "RegimePulse/pkg/http"
	xlogger "RegimePulse/pkg/logger"
	"RegimePulse/pkg/metrics"
	"RegimePulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// RegimeHandler exposes the analysis engine over HTTP.
type RegimeHandler struct {
	logger   *xlogger.Logger
	engine   *usecase.Engine
	recorder *metrics.Recorder
	store    drepo.HistoryStore
}

// NewRegimeHandler creates the API handler. store may be nil when
// persistence is disabled.
func NewRegimeHandler(logger *xlogger.Logger, engine *usecase.Engine, recorder *metrics.Recorder, store drepo.HistoryStore) *RegimeHandler {
	return &RegimeHandler{logger: logger, engine: engine, recorder: recorder, store: store}
}

func (h *RegimeHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/regime", h.Regime)
	g.GET("/history", h.History)
	g.GET("/mtf", h.MTF)
	g.GET("/metrics/:metric", h.Series)
	g.GET("/health", h.Health)
}

// Regime returns the current verdict. ?refresh=true bypasses the read cache.
func (h *RegimeHandler) Regime(c echo.Context) error {
	req := &models.RegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	if req.Refresh {
		h.engine.Invalidate(ctx)
	}

	verdict := h.engine.Snapshot(ctx)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, verdict)
}

// History returns one verdict per calendar day over the requested window.
func (h *RegimeHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	verdicts := h.engine.History(c.Request().Context(), req.Days)
	return xhttp.ListResponse(c, verdicts, int64(len(verdicts)))
}

// MTF returns the multi-timeframe confluence view.
func (h *RegimeHandler) MTF(c echo.Context) error {
	req := &models.MTFRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result := h.engine.MTF(c.Request().Context(), req.Days)
	return xhttp.SuccessResponse(c, result)
}

// Series returns the archived raw readings for one metric. The range is
// widened to whole UTC days; ?from= and ?to= accept RFC3339 or unix seconds.
func (h *RegimeHandler) Series(c echo.Context) error {
	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("metric history is not persisted"))
	}

	metric := c.Param("metric")
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.AddDate(0, 0, -30))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 1000)
	from, to = util.AlignDayRange(from, to)

	points, err := h.store.QueryMetrics(c.Request().Context(), metric, from, to, limit)
	if err != nil {
		h.logger.Error("metric series query failed", xlogger.Error(err), xlogger.String("metric", metric))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, points, int64(len(points)))
}

type healthPayload struct {
	Status          string                         `json:"status"`
	Time            time.Time                      `json:"time"`
	StreamConnected bool                           `json:"stream_connected"`
	LastPrice       float64                        `json:"last_price,omitempty"`
	Sources         map[string]models.SourceStatus `json:"sources"`
	Recent          []models.HealthEntry           `json:"recent_attempts,omitempty"`
	StoreError      string                         `json:"store_error,omitempty"`
}

// Health reports source acquisition status and backend reachability.
func (h *RegimeHandler) Health(c echo.Context) error {
	payload := healthPayload{
		Status: "ok",
		Time:   time.Now().UTC(),
	}

	if h.recorder != nil {
		payload.Sources = h.recorder.LatestStatus()
		payload.Recent = h.recorder.RecentAttempts()
	}

	payload.StreamConnected = h.engine.StreamConnected()
	if price, ok := h.engine.LastPrice(); ok {
		payload.LastPrice = price
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Health(ctx); err != nil {
			payload.Status = "degraded"
			payload.StoreError = err.Error()
			h.logger.Warn("history store unhealthy", xlogger.Error(err))
		}
	}

	return xhttp.SuccessResponse(c, payload)
}
