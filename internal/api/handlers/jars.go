package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/jarbudget-backend/internal/api/dto"
	"github.com/eshaffer321/jarbudget-backend/internal/application/service"
)

// JarsHandler handles jar-related HTTP requests.
type JarsHandler struct {
	jars   *service.JarService
	logger *slog.Logger
}

// NewJarsHandler creates a new jars handler.
func NewJarsHandler(jars *service.JarService, logger *slog.Logger) *JarsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JarsHandler{jars: jars, logger: logger}
}

// List handles GET /api/owners/:owner/jars
func (h *JarsHandler) List(c *gin.Context) {
	owner := c.Param("owner")

	views, err := h.jars.ListJars(owner)
	if err != nil {
		h.fail(c, owner, err)
		return
	}

	c.JSON(http.StatusOK, dto.JarListResponse{
		Jars:  dto.ToJarResponses(views),
		Count: len(views),
	})
}

// Create handles POST /api/owners/:owner/jars
func (h *JarsHandler) Create(c *gin.Context) {
	owner := c.Param("owner")

	var body dto.CreateJarsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	req, err := body.ToCreateRequest()
	if err != nil {
		h.fail(c, owner, err)
		return
	}

	result, err := h.jars.CreateJars(owner, req)
	if err != nil {
		h.fail(c, owner, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMutationResponse(result))
}

// Update handles PUT /api/owners/:owner/jars
func (h *JarsHandler) Update(c *gin.Context) {
	owner := c.Param("owner")

	var body dto.UpdateJarsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	req, err := body.ToUpdateRequest()
	if err != nil {
		h.fail(c, owner, err)
		return
	}

	result, err := h.jars.UpdateJars(owner, req)
	if err != nil {
		h.fail(c, owner, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMutationResponse(result))
}

// Delete handles DELETE /api/owners/:owner/jars
func (h *JarsHandler) Delete(c *gin.Context) {
	owner := c.Param("owner")

	var body dto.DeleteJarsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	result, err := h.jars.DeleteJars(owner, service.DeleteRequest{
		Names:  body.Names,
		Reason: body.Reason,
	})
	if err != nil {
		h.fail(c, owner, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMutationResponse(result))
}

func (h *JarsHandler) fail(c *gin.Context, owner string, err error) {
	status, apiErr := dto.FromEngineError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("jar operation failed", "owner", owner, "error", err)
	}
	c.JSON(status, apiErr)
}
