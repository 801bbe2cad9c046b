package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/jarbudget-backend/internal/api/dto"
	"github.com/eshaffer321/jarbudget-backend/internal/application/service"
)

// IncomeHandler reads and writes the per-owner total income scalar.
type IncomeHandler struct {
	jars   *service.JarService
	logger *slog.Logger
}

// NewIncomeHandler creates a new income handler.
func NewIncomeHandler(jars *service.JarService, logger *slog.Logger) *IncomeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncomeHandler{jars: jars, logger: logger}
}

// Get handles GET /api/owners/:owner/income
func (h *IncomeHandler) Get(c *gin.Context) {
	owner := c.Param("owner")

	income, err := h.jars.TotalIncome(owner)
	if err != nil {
		h.logger.Error("income lookup failed", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, dto.IncomeResponse{Owner: owner, TotalIncome: income})
}

// Set handles PUT /api/owners/:owner/income
func (h *IncomeHandler) Set(c *gin.Context) {
	owner := c.Param("owner")

	var body dto.SetIncomeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	if err := h.jars.SetTotalIncome(owner, body.TotalIncome); err != nil {
		status, apiErr := dto.FromEngineError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("income update failed", "owner", owner, "error", err)
		}
		c.JSON(status, apiErr)
		return
	}

	c.JSON(http.StatusOK, dto.IncomeResponse{Owner: owner, TotalIncome: body.TotalIncome})
}
