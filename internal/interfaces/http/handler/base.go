// Package handler holds the gin handlers of the API and bridge servers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tallysync/backend/internal/domain/shared"
	"github.com/tallysync/backend/internal/interfaces/http/dto"
	"github.com/tallysync/backend/internal/interfaces/http/middleware"
)

// BaseHandler writes the dto.Response envelope used by the sync API
type BaseHandler struct{}

// Success sends data with 200
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error envelope carrying the request ID. data, when not
// nil, is attached so callers still see a partial result.
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string, data any) {
	resp := dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c))
	resp.Data = data
	c.JSON(status, resp)
}

// BadRequest sends a 400
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message, nil)
}

// BadGateway sends a 502 for a Tally that could not be reached
func (h *BaseHandler) BadGateway(c *gin.Context, message string, data any) {
	h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstream, message, data)
}

// HandleDomainError maps a shared.DomainError onto its status; anything
// else is a 500
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message, nil)
		return
	}

	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred", nil)
}
