package handler

import (
	"errors"
	"net/http"

	"github.com/santechrwanda/broker-sub002/internal/apierror"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/infra"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type MarketHandler struct{ svc service.MarketService }

func NewMarketHandler(svc service.MarketService) *MarketHandler {
	return &MarketHandler{svc: svc}
}

func (h *MarketHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list securities"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MarketHandler) GetBySymbol(c *gin.Context) {
	resp, err := h.svc.GetBySymbol(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, service.ErrSecurityNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Security not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch security"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MarketHandler) Upsert(c *gin.Context) {
	var req dto.UpsertSecurityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Upsert(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh triggers an immediate feed pull, outside the cron schedule.
func (h *MarketHandler) Refresh(c *gin.Context) {
	refreshed, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Market feed temporarily unavailable"))
			return
		}
		c.JSON(http.StatusBadGateway, apierror.New("Market feed error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": refreshed})
}
