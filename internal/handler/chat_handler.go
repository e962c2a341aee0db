package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teamhub/internal/domain/chat"
	"teamhub/internal/domain/user"
	"teamhub/internal/services"
	"teamhub/internal/transport/httpdto"
)

// ChatHandler handles the chat read API and room management endpoints. The
// write path for messages lives on the websocket.
type ChatHandler struct {
	service *services.ChatService
}

// NewChatHandler creates a chat handler.
func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Messages returns messages newer than the optional ?since RFC 3339 time.
func (h *ChatHandler) Messages(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid since time", "INVALID_REQUEST"))
			return
		}
		since = parsed
	}

	views, err := h.service.MessagesSince(c.Request.Context(), since)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(views))
}

// ListRooms returns the public rooms.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]httpdto.RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomResponse(r))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

// CreateRoom creates a chat room.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req httpdto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), p.UserID, req.Name, req.Description, req.IsPrivate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(roomResponse(room)))
}

// DeleteRoom removes a room. Admin only; the default room is protected.
func (h *ChatHandler) DeleteRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid room id", "INVALID_REQUEST"))
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRoom(c.Request.Context(), actor, roomID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": roomID.String()}))
}

// RoomMessages returns a room's history. The room token "general" aliases
// the default room.
func (h *ChatHandler) RoomMessages(c *gin.Context) {
	views, err := h.service.RoomMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(views))
}

// DirectThread returns the DM history between the caller and another user.
func (h *ChatHandler) DirectThread(c *gin.Context) {
	other, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	views, err := h.service.DirectThread(c.Request.Context(), p.UserID, other)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(views))
}

// EditMessage updates a message's content. Author only.
func (h *ChatHandler) EditMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.EditMessage(c.Request.Context(), p.UserID, messageID, req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"updated": messageID.String()}))
}

// DeleteMessage removes a message. Author or moderator.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), actor, messageID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": messageID.String()}))
}

// DownloadAttachment redirects to a presigned URL for the attachment blob.
func (h *ChatHandler) DownloadAttachment(c *gin.Context) {
	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid attachment id", "INVALID_REQUEST"))
		return
	}

	url, err := h.service.AttachmentDownloadURL(c.Request.Context(), attachmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// Online returns the connected user count and usernames.
func (h *ChatHandler) Online(c *gin.Context) {
	names, err := h.service.OnlineUsernames(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.OnlineResponse{
		Count:     h.service.OnlineCount(),
		Usernames: names,
	}))
}

func roomResponse(r chat.Room) httpdto.RoomResponse {
	return httpdto.RoomResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsPrivate:   r.IsPrivate,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// actorFromContext rebuilds the acting user from the request principal. The
// response is already written when ok is false.
func actorFromContext(c *gin.Context) (user.User, bool) {
	p, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return user.User{}, false
	}
	return user.User{ID: p.UserID, Username: p.Username, Role: p.Role}, true
}
