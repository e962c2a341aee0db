package httpdto

// CreateRoomRequest is used for POST /v1/chat/rooms
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"is_private,omitempty"`
}

// RoomResponse describes a chat room
type RoomResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"is_private"`
	CreatedAt   string `json:"created_at"`
}

// EditMessageRequest is used for PATCH /v1/chat/messages/:id
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// OnlineResponse describes current presence
type OnlineResponse struct {
	Count     int      `json:"count"`
	Usernames []string `json:"usernames"`
}
