package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "keyper/internal/errors"
	"keyper/internal/pagination"
	"keyper/internal/services"
)

// HouseholdHandler handles household and membership requests.
type HouseholdHandler struct {
	householdService services.HouseholdServicer
	auditService     services.AuditServicer
}

// NewHouseholdHandler creates a new HouseholdHandler.
func NewHouseholdHandler(householdService services.HouseholdServicer, auditService services.AuditServicer) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService, auditService: auditService}
}

// CreateHouseholdRequest represents the request payload for creating a household.
type CreateHouseholdRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateHouseholdRequest represents the request payload for updating a household.
type UpdateHouseholdRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CreateHousehold handles the creation of a new household.
// @Summary     Create a household
// @Description Create a new household with the authenticated user as first member
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHouseholdRequest true "Household details"
// @Success     201 {object} models.Household "Household created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /households [post]
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.CreateHousehold(userID, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_HOUSEHOLD", "household", household.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"household": household})
}

// GetHouseholds handles listing the authenticated user's households.
// @Summary     Get households
// @Description Get a paginated list of households the user belongs to
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Household] "Paginated households"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /households [get]
func (h *HouseholdHandler) GetHouseholds(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.householdService.GetUserHouseholds(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHousehold handles fetching a single household.
// @Summary     Get a household
// @Description Get a household the user belongs to, with its members
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Household ID"
// @Success     200 {object} models.Household "Household"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Router      /households/{id} [get]
func (h *HouseholdHandler) GetHousehold(c *gin.Context) {
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

	household, err := h.householdService.GetHouseholdByID(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// UpdateHousehold handles updating a household.
// @Summary     Update a household
// @Description Update a household's name and description
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Household ID"
// @Param       request body UpdateHouseholdRequest true "Fields to update"
// @Success     200 {object} models.Household "Updated household"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Router      /households/{id} [put]
func (h *HouseholdHandler) UpdateHousehold(c *gin.Context) {
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

	var req UpdateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.UpdateHousehold(userID, householdID, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_HOUSEHOLD", "household", household.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// GetMembers handles listing a household's members.
// @Summary     Get household members
// @Description Get all members of a household the user belongs to
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Household ID"
// @Success     200 {array} UserResponse "Members"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/members [get]
func (h *HouseholdHandler) GetMembers(c *gin.Context) {
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

	members, err := h.householdService.GetMembers(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// SetActiveHousehold handles switching the user's active household.
// @Summary     Set active household
// @Description Switch the household the user is currently acting in
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Household ID"
// @Success     200 {object} map[string]string "Switched"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/activate [post]
func (h *HouseholdHandler) SetActiveHousehold(c *gin.Context) {
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

	if err := h.householdService.SetActiveHousehold(userID, householdID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "active household updated"})
}

// RemoveMember handles removing a member from a household.
// @Summary     Remove a household member
// @Description Remove a member from the household; members may remove themselves
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id       path int true "Household ID"
// @Param       memberID path int true "Member user ID"
// @Success     200 {object} map[string]string "Removed"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /households/{id}/members/{memberID} [delete]
func (h *HouseholdHandler) RemoveMember(c *gin.Context) {
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

	if err := h.householdService.RemoveMember(userID, householdID, memberID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REMOVE_MEMBER", "household", householdID, c.ClientIP(),
		map[string]interface{}{"member_id": memberID})

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}
