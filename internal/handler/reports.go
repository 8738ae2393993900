package handler

import (
	"errors"
	"net/http"

	"github.com/santechrwanda/broker-sub002/internal/apierror"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/middleware"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Request accepts a commission-report request and answers 202 — generation is
// asynchronous; poll Get until the status is ready.
func (h *ReportsHandler) Request(c *gin.Context) {
	var req dto.RequestReportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	user := middleware.GetIdentity(c)
	resp, err := h.svc.Request(c.Request.Context(), user, req)
	if err != nil {
		if errors.Is(err, service.ErrBadPeriod) {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid report period"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to request report"))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *ReportsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list reports"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Report not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch report"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Download streams the rendered PDF for a ready report.
func (h *ReportsHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	path, err := h.svc.FilePath(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportNotFound):
			c.JSON(http.StatusNotFound, apierror.New("Report not found"))
		case errors.Is(err, service.ErrReportNotReady):
			c.JSON(http.StatusConflict, apierror.New("Report not ready"))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch report"))
		}
		return
	}
	c.FileAttachment(path, "commission_report.pdf")
}
