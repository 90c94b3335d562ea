package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
	"keyper/internal/services"
)

// InvitationHandler handles invitation code requests.
type InvitationHandler struct {
	invitationService services.InvitationServicer
	auditService      services.AuditServicer
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitationService services.InvitationServicer, auditService services.AuditServicer) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService, auditService: auditService}
}

// CreateInvitationRequest represents the request payload for creating an invitation.
type CreateInvitationRequest struct {
	Role  models.Role `json:"role" binding:"omitempty,role"`
	Label string      `json:"label" binding:"max=100"`
}

// AcceptInvitationRequest represents the request payload for redeeming a code.
type AcceptInvitationRequest struct {
	Code string `json:"code" binding:"required,uuid"`
}

// CreateInvitation handles issuing an invitation code.
// @Summary     Create an invitation
// @Description Issue a single-use invitation code for the household
// @Tags        invitations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                     true "Household ID"
// @Param       request body CreateInvitationRequest true "Invitation details"
// @Success     201 {object} models.Invitation "Invitation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /households/{id}/invitations [post]
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
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

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invitation, err := h.invitationService.CreateInvitation(userID, householdID, req.Role, req.Label)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INVITATION", "invitation", invitation.ID, c.ClientIP(),
		map[string]interface{}{"household_id": householdID, "role": invitation.Role})

	c.JSON(http.StatusCreated, gin.H{"invitation": invitation})
}

// GetInvitations handles listing a household's invitations.
// @Summary     Get invitations
// @Description List the invitations issued for a household
// @Tags        invitations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Household ID"
// @Success     200 {array} models.Invitation "Invitations"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /households/{id}/invitations [get]
func (h *InvitationHandler) GetInvitations(c *gin.Context) {
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

	invitations, err := h.invitationService.ListInvitations(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// AcceptInvitation handles redeeming an invitation code.
// @Summary     Accept an invitation
// @Description Redeem an invitation code and join its household
// @Tags        invitations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AcceptInvitationRequest true "Invitation code"
// @Success     200 {object} models.Household "Joined household"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Invitation not found"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Failure     410 {object} ErrorResponse "Invitation expired or used"
// @Router      /invitations/accept [post]
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.invitationService.AcceptInvitation(userID, req.Code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ACCEPT_INVITATION", "household", household.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// RevokeInvitation handles revoking an unused invitation.
// @Summary     Revoke an invitation
// @Description Mark an unused invitation as used so it can no longer be redeemed
// @Tags        invitations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invitation ID"
// @Success     200 {object} map[string]string "Revoked"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Invitation not found"
// @Router      /invitations/{id} [delete]
func (h *InvitationHandler) RevokeInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invitationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.invitationService.RevokeInvitation(userID, invitationID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REVOKE_INVITATION", "invitation", invitationID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "invitation revoked"})
}
