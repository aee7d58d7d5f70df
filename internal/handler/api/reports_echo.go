package api

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"FinLab/internal/domain/models"
	domrepo "FinLab/internal/domain/repository"
	"FinLab/internal/usecase"
	xhttp "FinLab/pkg/http"
	xlogger "FinLab/pkg/logger"
)

// ReportsEchoHandler serves baseline reports and dataset summaries.
type ReportsEchoHandler struct {
	logger  *xlogger.Logger
	reports *usecase.ReportsUseCase
}

func NewReportsEchoHandler(logger *xlogger.Logger, reports *usecase.ReportsUseCase) *ReportsEchoHandler {
	return &ReportsEchoHandler{logger: logger, reports: reports}
}

func (h *ReportsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/reports", h.LatestReport)
	g.GET("/reports/:ticker", h.TickerReport)
	g.GET("/dataset/summary", h.DatasetSummary)
}

func (h *ReportsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ReportsEchoHandler) LatestReport(c echo.Context) error {
	res, err := h.reports.LatestReport(c.Request().Context())
	if err != nil {
		return h.fail(c, "latest report", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) TickerReport(c echo.Context) error {
	req := &models.TickerReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.reports.TickerReport(c.Request().Context(), strings.ToUpper(req.Ticker))
	if err != nil {
		return h.fail(c, "ticker report", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) DatasetSummary(c echo.Context) error {
	req := &models.DatasetSummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.reports.DatasetSummary(c.Request().Context(), strings.ToUpper(req.Ticker))
	if err != nil {
		return h.fail(c, "dataset summary", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ReportsEchoHandler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, domrepo.ErrReportNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no baseline report yet").Because(err))
	case errors.Is(err, domrepo.ErrDatasetNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no dataset yet").Because(err))
	case errors.Is(err, usecase.ErrTickerNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("%v", err).Detail("ticker", strings.ToUpper(c.Param("ticker"))))
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("%s failed", op).Because(err))
}
