package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/santechrwanda/broker-sub002/internal/apierror"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsersHandler struct{ svc service.UserService }

func NewUsersHandler(svc service.UserService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, apierror.New("Email already registered"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UsersHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	resp, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list users"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsersHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch user"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, apierror.New("User not found"))
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, apierror.New("Email already registered"))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangeStatus activates or deactivates an account. Deactivation takes effect
// on the next request the user makes — the gate re-checks status every time.
func (h *UsersHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ChangeStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ChangeStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to change status"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UsersHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to delete user"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Import accepts a CSV upload (multipart field "file", or the raw body) with
// name,email,role,password rows and reports per-row outcomes.
func (h *UsersHandler) Import(c *gin.Context) {
	data, err := readImportBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Missing CSV payload"))
		return
	}
	resp, err := h.svc.BulkImport(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Import failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func readImportBody(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
