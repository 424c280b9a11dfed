package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "querydesk/internal/errors"
	"querydesk/internal/models"
	"querydesk/internal/pagination"
	"querydesk/internal/services"
)

// UserHandler handles user administration and the role-filtered listings
// that populate employee/manager pickers.
type UserHandler struct {
	identity services.IdentityServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(identity services.IdentityServicer) *UserHandler {
	return &UserHandler{identity: identity}
}

// CreateUserRequest is the payload for the admin create-user endpoint.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,user_role"`
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// CreateUser creates a new account. Admin only (enforced by route middleware).
// @Summary     Create a user
// @Description Create a new account with a role; restricted to admins
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "User details"
// @Success     201 {object} models.User "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not an admin"
// @Failure     409 {object} ErrorResponse "Username taken"
// @Router      /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.identity.CreateUser(req.Username, req.Password, models.Role(req.Role), req.FullName, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// ListUsers returns users filtered by role.
// @Summary     List users by role
// @Description List accounts holding a role, for employee/manager pickers
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       role query string true "Role to filter by"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.User] "Users"
// @Failure     400 {object} ErrorResponse "Unknown role"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if role == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "role query parameter is required"))
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.identity.ListUsersByRole(role, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
