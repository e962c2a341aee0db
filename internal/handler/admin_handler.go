package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teamhub/internal/repository"
	"teamhub/internal/services"
	"teamhub/internal/transport/httpdto"
)

// AdminHandler handles administrative endpoints. Every operation requires
// the admin role.
type AdminHandler struct {
	chat  *services.ChatService
	auth  *services.AuthService
	users repository.UserRepository
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(chat *services.ChatService, auth *services.AuthService, users repository.UserRepository) *AdminHandler {
	return &AdminHandler{chat: chat, auth: auth, users: users}
}

// ClearChatData wipes all messages and every room except the default one.
func (h *AdminHandler) ClearChatData(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.chat.ClearAllChatData(c.Request.Context(), actor); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"cleared": true}))
}

// ListUsers returns every registered user.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
		return
	}

	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]httpdto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

// CreateUser provisions an account with an explicit role.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
		return
	}

	var req httpdto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request body", "INVALID_REQUEST"))
		return
	}

	u, err := h.auth.CreateUser(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(userResponse(u)))
}

// DeleteUser removes a user account. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}
	if userID == actor.ID {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("cannot delete own account", "INVALID_REQUEST"))
		return
	}

	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": userID.String()}))
}
