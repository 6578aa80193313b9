// File: jobnest/handlers/admin.go
package handlers

import (
	"net/http"

	"jobnest/models"
	"jobnest/services/admin"
	"jobnest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated moderation operations.
type AdminHandler struct {
	Moderation admin.ModerationService
	Logger     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ms admin.ModerationService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Moderation: ms, Logger: logger}
}

// SetProviderStatus applies a moderation transition to a provider.
func (ah *AdminHandler) SetProviderStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var input struct {
		Status models.ProviderStatus `json:"status"`
		Reason string                `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	provider, err := ah.Moderation.SetProviderStatus(c.Request.Context(), actor, c.Param("id"), input.Status, input.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider)
}

// GetProvider returns a provider's moderation record.
func (ah *AdminHandler) GetProvider(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	provider, err := ah.Moderation.GetProvider(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider)
}

// ListProviderAudit returns the append-only moderation history of a provider.
func (ah *AdminHandler) ListProviderAudit(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	records, err := ah.Moderation.ListAudit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
