package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamhub/internal/domain/chat"
	"teamhub/internal/domain/user"
	"teamhub/internal/events"
	"teamhub/internal/mention"
	"teamhub/internal/presence"
	"teamhub/internal/redis"
	"teamhub/internal/repository"
	"teamhub/internal/storage"
	apperrors "teamhub/pkg/errors"
)

// allowedEmojis is the fixed reaction allow-list.
var allowedEmojis = map[string]struct{}{
	"👍": {}, "😂": {}, "😢": {}, "❤️": {}, "🎉": {},
}

const parentSnippetLen = 50

// ChatService is the message pipeline: it validates, persists, and enriches
// inbound chat events, then hands fan-out to the broadcaster. Malformed
// input is dropped without an error; persistence failures abort the event
// before any broadcast is issued.
type ChatService struct {
	users       repository.UserRepository
	rooms       repository.RoomRepository
	messages    repository.MessageRepository
	presence    *presence.Registry
	cache       *redis.CacheStore
	store       *storage.Client
	broadcaster events.Broadcaster
	logger      *zap.Logger
}

func NewChatService(
	users repository.UserRepository,
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	registry *presence.Registry,
	cache *redis.CacheStore,
	store *storage.Client,
	broadcaster events.Broadcaster,
) *ChatService {
	return &ChatService{
		users:       users,
		rooms:       rooms,
		messages:    messages,
		presence:    registry,
		cache:       cache,
		store:       store,
		broadcaster: broadcaster,
		logger:      zap.L().With(zap.String("component", "chat")),
	}
}

// SendMessageInput is the validated shape of a send_message / reply_message
// event. Room carries the raw destination token ("general" or a room id);
// RecipientID is set instead for direct messages. ParentID is set for
// replies only.
type SendMessageInput struct {
	SenderID    uuid.UUID
	Content     string
	Room        string
	RecipientID string
	ParentID    string
}

// Send processes a send_message event.
func (s *ChatService) Send(ctx context.Context, in SendMessageInput) error {
	return s.deliver(ctx, in, nil)
}

// Reply processes a reply_message event. A parent id that does not resolve
// to an existing message drops the whole event.
func (s *ChatService) Reply(ctx context.Context, in SendMessageInput) error {
	parentID, err := uuid.Parse(in.ParentID)
	if err != nil {
		s.logger.Debug("reply dropped: bad parent id", zap.String("parent_id", in.ParentID))
		return nil
	}
	parent, err := s.messages.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Debug("reply dropped: parent not found", zap.String("parent_id", in.ParentID))
			return nil
		}
		return err
	}
	return s.deliver(ctx, in, &parent)
}

// deliver is the shared Send/Reply path: resolve destination, persist,
// extract mentions, broadcast. Persistence strictly precedes broadcast.
func (s *ChatService) deliver(ctx context.Context, in SendMessageInput, parent *chat.Message) error {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil
	}
	if (in.Room == "") == (in.RecipientID == "") {
		// Exactly one destination discriminator must be set.
		s.logger.Debug("message dropped: ambiguous destination")
		return nil
	}

	author, err := s.users.GetByID(ctx, in.SenderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	msg := chat.Message{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: time.Now(),
		AuthorID:  author.ID,
	}
	if parent != nil {
		msg.ParentID = uuid.NullUUID{UUID: parent.ID, Valid: true}
	}

	var roomToken string
	if in.RecipientID != "" {
		recipientID, err := uuid.Parse(in.RecipientID)
		if err != nil {
			return nil
		}
		if _, err := s.users.GetByID(ctx, recipientID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		msg.RecipientID = uuid.NullUUID{UUID: recipientID, Valid: true}
		msg.IsDirectMessage = true
	} else {
		room, ok := s.resolveRoom(ctx, in.Room, author.ID, true)
		if !ok {
			return nil
		}
		msg.RoomID = uuid.NullUUID{UUID: room.ID, Valid: true}
		roomToken = room.ID.String()
	}

	if err := s.messages.Create(ctx, &msg); err != nil {
		s.logger.Error("message persist failed", zap.Error(err))
		return err
	}

	view := s.buildView(ctx, author, msg, parent)
	env := events.NewEnvelope(events.EventReceiveMessage, view)

	if msg.IsDirectMessage {
		s.broadcaster.Broadcast(events.UserDestination(author.ID), env)
		s.broadcaster.Broadcast(events.UserDestination(msg.RecipientID.UUID), env)
	} else {
		s.cache.InvalidateRoomHistory(ctx, msg.RoomID.UUID)
		s.broadcaster.Broadcast(events.RoomDestination(msg.RoomID.UUID), env)
	}

	s.notifyMentions(ctx, author, content, roomToken)
	return nil
}

// buildView assembles the client-facing message payload, including the
// denormalized parent snippet for replies.
func (s *ChatService) buildView(ctx context.Context, author user.User, msg chat.Message, parent *chat.Message) chat.MessageView {
	view := chat.MessageView{
		ID:          msg.ID,
		Content:     msg.Content,
		Username:    author.Username,
		IsAdmin:     author.IsAdmin(),
		Status:      author.Status,
		Timestamp:   msg.CreatedAt,
		Attachments: []chat.AttachmentView{},
		ParentID:    msg.ParentID,
	}
	if author.ProfilePic.Valid {
		pic := author.ProfilePic.String
		view.ProfilePic = &pic
	}
	if parent != nil {
		view.ParentContent = snippet(parent.Content, parentSnippetLen)
		if parentAuthor, err := s.users.GetByID(ctx, parent.AuthorID); err == nil {
			view.ParentUsername = parentAuthor.Username
		}
	}
	return view
}

// notifyMentions delivers one mention_notification per mentioned user,
// deduplicated by user id, ignoring unknown usernames and self-mentions.
func (s *ChatService) notifyMentions(ctx context.Context, author user.User, content, roomToken string) {
	notified := make(map[uuid.UUID]struct{})
	for _, name := range mention.Extract(content) {
		mentioned, err := s.users.GetByUsername(ctx, name)
		if err != nil {
			continue
		}
		if mentioned.ID == author.ID {
			continue
		}
		if _, done := notified[mentioned.ID]; done {
			continue
		}
		notified[mentioned.ID] = struct{}{}

		env := events.NewEnvelope(events.EventMentionNotification, events.MentionPayload{
			From:    author.Username,
			Message: content,
			Room:    roomToken,
		})
		s.broadcaster.Broadcast(events.UserDestination(mentioned.ID), env)
	}
}

// AddReaction processes an add_reaction event. Duplicate adds are
// idempotent; the full aggregate is rebroadcast either way. Reactions on
// roomless (direct) messages are dropped.
func (s *ChatService) AddReaction(ctx context.Context, userID uuid.UUID, messageID, emoji string) error {
	if _, ok := allowedEmojis[emoji]; !ok {
		return nil
	}
	msg, ok, err := s.reactableMessage(ctx, messageID)
	if err != nil || !ok {
		return err
	}

	reaction := chat.Reaction{
		ID:        uuid.New(),
		MessageID: msg.ID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}
	if err := s.messages.AddReaction(ctx, &reaction); err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.Error("reaction persist failed", zap.Error(err))
			return err
		}
	}
	return s.broadcastReactions(ctx, msg)
}

// RemoveReaction processes a remove_reaction event. Removing a reaction
// that was never added is a no-op with no broadcast.
func (s *ChatService) RemoveReaction(ctx context.Context, userID uuid.UUID, messageID, emoji string) error {
	if _, ok := allowedEmojis[emoji]; !ok {
		return nil
	}
	msg, ok, err := s.reactableMessage(ctx, messageID)
	if err != nil || !ok {
		return err
	}

	if err := s.messages.RemoveReaction(ctx, msg.ID, userID, emoji); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.broadcastReactions(ctx, msg)
}

// reactableMessage resolves a message id token to a message that can carry
// reactions. Unresolvable ids and roomless messages report ok=false.
func (s *ChatService) reactableMessage(ctx context.Context, messageID string) (chat.Message, bool, error) {
	id, err := uuid.Parse(messageID)
	if err != nil {
		return chat.Message{}, false, nil
	}
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return chat.Message{}, false, nil
		}
		return chat.Message{}, false, err
	}
	if !msg.RoomID.Valid {
		return chat.Message{}, false, nil
	}
	return msg, true, nil
}

func (s *ChatService) broadcastReactions(ctx context.Context, msg chat.Message) error {
	aggregate, err := s.messages.ReactionAggregate(ctx, msg.ID)
	if err != nil {
		return err
	}
	s.cache.SetReactionAggregate(ctx, msg.ID, aggregate)

	env := events.NewEnvelope(events.EventReactionsUpdate, events.ReactionsPayload{
		MessageID: msg.ID,
		Reactions: aggregate,
	})
	s.broadcaster.Broadcast(events.RoomDestination(msg.RoomID.UUID), env)
	return nil
}

// SetStatus processes a set_status event. Unrecognized values are dropped
// without persistence or broadcast.
func (s *ChatService) SetStatus(ctx context.Context, userID uuid.UUID, status string) error {
	if !user.ValidStatus(status) {
		return nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}

	env := events.NewEnvelope(events.EventUserStatusUpdate, events.StatusPayload{
		UserID:   u.ID,
		Username: u.Username,
		Status:   status,
	})
	s.broadcaster.BroadcastGlobal(env)
	return nil
}

// StartTyping broadcasts an ephemeral typing indicator to the room,
// excluding the typing connection itself. Destinationless typing events are
// dropped: there is no shared room context to indicate typing in.
func (s *ChatService) StartTyping(ctx context.Context, username, clientID, roomToken string) {
	room, ok := s.resolveRoom(ctx, roomToken, uuid.Nil, false)
	if !ok {
		return
	}
	env := events.NewEnvelope(events.EventUserTyping, events.TypingPayload{Username: username})
	s.broadcaster.BroadcastExcept(events.RoomDestination(room.ID), env, clientID)
}

// StopTyping mirrors StartTyping.
func (s *ChatService) StopTyping(ctx context.Context, clientID, roomToken string) {
	room, ok := s.resolveRoom(ctx, roomToken, uuid.Nil, false)
	if !ok {
		return
	}
	env := events.NewEnvelope(events.EventUserStoppedTyping, struct{}{})
	s.broadcaster.BroadcastExcept(events.RoomDestination(room.ID), env, clientID)
}

// ResolveRoomDestination maps a join/leave room token to a typed
// destination, lazily creating the General room on first use.
func (s *ChatService) ResolveRoomDestination(ctx context.Context, token string, actorID uuid.UUID) (events.Destination, bool) {
	room, ok := s.resolveRoom(ctx, token, actorID, true)
	if !ok {
		return events.Destination{}, false
	}
	return events.RoomDestination(room.ID), true
}

// resolveRoom turns a destination token into a room. The literal "general"
// aliases the General room, created lazily when createGeneral is set; any
// other token must be the id of an existing room. Malformed or unknown
// tokens report ok=false and callers drop the event.
func (s *ChatService) resolveRoom(ctx context.Context, token string, actorID uuid.UUID, createGeneral bool) (chat.Room, bool) {
	if token == "general" {
		room, err := s.rooms.GetByName(ctx, chat.GeneralRoomName)
		if err == nil {
			return room, true
		}
		if !errors.Is(err, apperrors.ErrNotFound) || !createGeneral {
			return chat.Room{}, false
		}

		room = chat.Room{
			ID:          uuid.New(),
			Name:        chat.GeneralRoomName,
			Description: "Default chat room for all team members",
			CreatedBy:   actorID,
			CreatedAt:   time.Now(),
		}
		err = s.rooms.Create(ctx, &room)
		if err == nil {
			return room, true
		}
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Lost the creation race; the winner's row is the General room.
			room, err := s.rooms.GetByName(ctx, chat.GeneralRoomName)
			return room, err == nil
		}
		return chat.Room{}, false
	}

	id, err := uuid.Parse(token)
	if err != nil {
		return chat.Room{}, false
	}
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return chat.Room{}, false
	}
	return room, true
}

// EditMessage updates a message's content. Only the author may edit.
func (s *ChatService) EditMessage(ctx context.Context, editorID, messageID uuid.UUID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return apperrors.ErrInvalidInput
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.AuthorID != editorID {
		return apperrors.ErrForbidden
	}
	if err := s.messages.UpdateContent(ctx, messageID, content, time.Now()); err != nil {
		return err
	}
	if msg.RoomID.Valid {
		s.cache.InvalidateRoomHistory(ctx, msg.RoomID.UUID)
	}
	return nil
}

// DeleteMessage removes a message and cascades over its attachments and
// reactions; replies stay behind with a dangling parent reference. Allowed
// for the author or a moderator.
func (s *ChatService) DeleteMessage(ctx context.Context, actor user.User, messageID uuid.UUID) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.AuthorID != actor.ID && !actor.CanModerate() {
		return apperrors.ErrForbidden
	}

	attachments, err := s.messages.ListAttachments(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}

	for _, a := range attachments {
		if s.store == nil {
			break
		}
		if err := s.store.DeleteObject(ctx, a.Filename); err != nil {
			s.logger.Warn("attachment blob delete failed",
				zap.String("key", a.Filename), zap.Error(err))
		}
	}

	if msg.RoomID.Valid {
		s.cache.InvalidateRoomHistory(ctx, msg.RoomID.UUID)
	}
	return nil
}

// CreateRoom creates a chat room. Room names are unique.
func (s *ChatService) CreateRoom(ctx context.Context, creatorID uuid.UUID, name, description string, isPrivate bool) (chat.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return chat.Room{}, apperrors.ErrInvalidInput
	}
	room := chat.Room{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPrivate:   isPrivate,
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
	}
	if err := s.rooms.Create(ctx, &room); err != nil {
		return chat.Room{}, err
	}
	return room, nil
}

// DeleteRoom removes a room and its messages. Admin only; the General room
// is never deletable.
func (s *ChatService) DeleteRoom(ctx context.Context, actor user.User, roomID uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Name == chat.GeneralRoomName {
		return apperrors.ErrRoomProtected
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return err
	}
	s.cache.InvalidateRoomHistory(ctx, roomID)
	return nil
}

// ListRooms returns the public rooms.
func (s *ChatService) ListRooms(ctx context.Context) ([]chat.Room, error) {
	return s.rooms.ListPublic(ctx)
}

// ClearAllChatData wipes messages, attachments, reactions, and every room
// except General. Admin only.
func (s *ChatService) ClearAllChatData(ctx context.Context, actor user.User) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return s.rooms.DeleteAllExcept(ctx, chat.GeneralRoomName)
}

// MessagesSince returns all messages newer than the given time, oldest
// first. A zero time returns everything.
func (s *ChatService) MessagesSince(ctx context.Context, since time.Time) ([]chat.MessageView, error) {
	return s.messages.ListSince(ctx, since)
}

// RoomMessages returns the history of a room addressed by token. Unknown
// tokens yield an empty history rather than an error.
func (s *ChatService) RoomMessages(ctx context.Context, token string) ([]chat.MessageView, error) {
	room, ok := s.resolveRoom(ctx, token, uuid.Nil, false)
	if !ok {
		return []chat.MessageView{}, nil
	}
	if views, hit := s.cache.GetRoomHistory(ctx, room.ID); hit {
		return views, nil
	}
	views, err := s.messages.ListRoomMessages(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	s.cache.SetRoomHistory(ctx, room.ID, views)
	return views, nil
}

// DirectThread returns the direct-message history between two users.
func (s *ChatService) DirectThread(ctx context.Context, userA, userB uuid.UUID) ([]chat.MessageView, error) {
	return s.messages.ListDirectThread(ctx, userA, userB)
}

// OnlineCount returns the number of distinct users currently connected.
func (s *ChatService) OnlineCount() int {
	return s.presence.CurrentCount()
}

// OnlineUsernames resolves the currently connected users to usernames.
func (s *ChatService) OnlineUsernames(ctx context.Context) ([]string, error) {
	ids := s.presence.SnapshotOnlineUserIDs()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		names = append(names, u.Username)
	}
	return names, nil
}

// AttachmentDownloadURL returns a presigned URL for an attachment blob.
func (s *ChatService) AttachmentDownloadURL(ctx context.Context, attachmentID uuid.UUID) (string, error) {
	a, err := s.messages.GetAttachment(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return "", apperrors.ErrServiceUnavailable
	}
	return s.store.PresignGet(ctx, a.Filename, a.OriginalFilename)
}

func snippet(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max])
}
