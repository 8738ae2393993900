package handler

import (
	"net/http"

	"github.com/santechrwanda/broker-sub002/internal/apierror"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/middleware"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type TradesHandler struct{ svc service.TradeService }

func NewTradesHandler(svc service.TradeService) *TradesHandler {
	return &TradesHandler{svc: svc}
}

// Record books a trade under the authenticated teller's id — the recording
// identity comes from the gate, never from the request body.
func (h *TradesHandler) Record(c *gin.Context) {
	var req dto.RecordTradeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	user := middleware.GetIdentity(c)
	resp, err := h.svc.Record(c.Request.Context(), user.ID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to record trade"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List shows all trades to managers and admins; tellers see their own.
func (h *TradesHandler) List(c *gin.Context) {
	var filter dto.TradeFilter
	_ = c.ShouldBindQuery(&filter)

	user := middleware.GetIdentity(c)
	var (
		resp []dto.TradeResponse
		err  error
	)
	if user.Role == model.RoleTeller {
		resp, err = h.svc.ListByTeller(c.Request.Context(), user.ID, filter)
	} else {
		resp, err = h.svc.List(c.Request.Context(), filter)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list trades"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
