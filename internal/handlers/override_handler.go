package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "keyper/internal/errors"
	"keyper/internal/services"
)

// OverrideHandler handles per-household permission override requests.
type OverrideHandler struct {
	overrideService services.OverrideServicer
	auditService    services.AuditServicer
}

// NewOverrideHandler creates a new OverrideHandler.
func NewOverrideHandler(overrideService services.OverrideServicer, auditService services.AuditServicer) *OverrideHandler {
	return &OverrideHandler{overrideService: overrideService, auditService: auditService}
}

// UpsertOverrideRequest represents the request payload for setting an override.
// Granting full budget access implies the three narrower capabilities.
type UpsertOverrideRequest struct {
	CanAccessBudget  bool `json:"can_access_budget"`
	CanCreateExpense bool `json:"can_create_depense"`
	CanDeleteExpense bool `json:"can_delete_depense"`
	CanCreateBudget  bool `json:"can_create_budget"`
}

// UpsertOverride handles creating or replacing a member's override.
// @Summary     Set a permission override
// @Description Create or replace the financial permission override for a household member
// @Tags        permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id       path int                   true "Household ID"
// @Param       memberID path int                   true "Member user ID"
// @Param       request  body UpsertOverrideRequest true "Capability flags"
// @Success     200 {object} models.PermissionOverride "Stored override"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /households/{id}/members/{memberID}/permissions [put]
func (h *OverrideHandler) UpsertOverride(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	memberID, err := parsePathID(c, "memberID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	override, err := h.overrideService.UpsertOverride(userID, householdID, memberID,
		req.CanAccessBudget, req.CanCreateExpense, req.CanDeleteExpense, req.CanCreateBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPSERT_OVERRIDE", "permission_override", override.ID, c.ClientIP(),
		map[string]interface{}{
			"household_id":       householdID,
			"member_id":          memberID,
			"can_access_budget":  override.CanAccessBudget,
			"can_create_depense": override.CanCreateDepense,
			"can_delete_depense": override.CanDeleteDepense,
			"can_create_budget":  override.CanCreateBudget,
		})

	c.JSON(http.StatusOK, gin.H{"override": override})
}

// GetOverride handles fetching a member's override.
// @Summary     Get a permission override
// @Description Get the financial permission override for a household member
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id       path int true "Household ID"
// @Param       memberID path int true "Member user ID"
// @Success     200 {object} models.PermissionOverride "Override"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Override not found"
// @Router      /households/{id}/members/{memberID}/permissions [get]
func (h *OverrideHandler) GetOverride(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	memberID, err := parsePathID(c, "memberID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	override, err := h.overrideService.GetOverride(userID, householdID, memberID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"override": override})
}

// GetOverrides handles listing a household's overrides.
// @Summary     Get permission overrides
// @Description List all financial permission overrides of a household
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Household ID"
// @Success     200 {array} models.PermissionOverride "Overrides"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /households/{id}/permissions [get]
func (h *OverrideHandler) GetOverrides(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	overrides, err := h.overrideService.ListOverrides(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

// DeleteOverride handles removing a member's override.
// @Summary     Delete a permission override
// @Description Remove a member's override so the role matrix answers again
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id       path int true "Household ID"
// @Param       memberID path int true "Member user ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Override not found"
// @Router      /households/{id}/members/{memberID}/permissions [delete]
func (h *OverrideHandler) DeleteOverride(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	memberID, err := parsePathID(c, "memberID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.overrideService.DeleteOverride(userID, householdID, memberID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_OVERRIDE", "permission_override", 0, c.ClientIP(),
		map[string]interface{}{"household_id": householdID, "member_id": memberID})

	c.JSON(http.StatusOK, gin.H{"message": "override removed"})
}
