package api

import (
	models "TradeGate/internal/domain/models"
	"TradeGate/internal/usecase"
	xhttp "TradeGate/pkg/http"
	xlogger "TradeGate/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TradesHandler implements the Echo HTTP surface over the secure query
// facade.
type TradesHandler struct {
	logger  *xlogger.Logger
	service *usecase.SecureQueryService
}

func NewTradesHandler(logger *xlogger.Logger, service *usecase.SecureQueryService) *TradesHandler {
	return &TradesHandler{logger: logger, service: service}
}

func (h *TradesHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/totals", h.Totals)
	g.GET("/transactions", h.Transactions)
}

func (h *TradesHandler) Totals(c echo.Context) error {
	req := &models.TotalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.service.AggregateTotals(c.Request().Context(), req.DateFrom, req.DateTo)
	if err != nil {
		h.logger.Error("totals usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if res.Insufficient != nil {
		return xhttp.SuccessResponse(c, res.Insufficient)
	}
	return xhttp.SuccessResponse(c, res.Totals)
}

func (h *TradesHandler) Transactions(c echo.Context) error {
	req := &models.RecordsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.service.QueryRecords(c.Request().Context(), usecase.QueryParams{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Context:  req.Context,
		Filters:  req.Filters(),
		Limit:    req.Limit,
		Offset:   req.Offset,
		GroupBy:  req.GroupBy,
	})
	if err != nil {
		h.logger.Error("transactions usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if res.Grouped != nil {
		return xhttp.SuccessResponse(c, res.Grouped)
	}
	return xhttp.SuccessResponse(c, res.List)
}
