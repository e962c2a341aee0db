package repository

import (
	"context"
	"errors"
	"time"

	"teamhub/internal/domain/chat"
	apperrors "teamhub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(res.Error) {
			return apperrors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	var m chat.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, apperrors.ErrNotFound
		}
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes the message together with its attachments and reactions.
// Replies keep their parent reference and stay in place.
func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&chat.Attachment{}, "message_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&chat.Reaction{}, "message_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&chat.Message{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresMessageRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM message_attachments`).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM message_reactions`).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM chat_messages`).Error
	})
}

const messageViewSelect = `m.id, m.content, m.created_at AS timestamp, m.parent_id,
	u.username, (u.role = 'admin') AS is_admin, u.status, u.profile_pic,
	pu.username AS parent_username, LEFT(p.content, 50) AS parent_content`

const messageViewJoins = `JOIN users u ON u.id = m.author_id
	LEFT JOIN chat_messages p ON p.id = m.parent_id
	LEFT JOIN users pu ON pu.id = p.author_id`

func (r *PostgresMessageRepository) ListSince(ctx context.Context, since time.Time) ([]chat.MessageView, error) {
	var views []chat.MessageView
	q := r.db.WithContext(ctx).
		Table("chat_messages AS m").
		Select(messageViewSelect).
		Joins(messageViewJoins).
		Order("m.created_at ASC")
	if !since.IsZero() {
		q = q.Where("m.created_at > ?", since)
	}
	if err := q.Scan(&views).Error; err != nil {
		return nil, err
	}
	return r.withAttachments(ctx, views)
}

func (r *PostgresMessageRepository) ListRoomMessages(ctx context.Context, roomID uuid.UUID) ([]chat.MessageView, error) {
	var views []chat.MessageView
	err := r.db.WithContext(ctx).
		Table("chat_messages AS m").
		Select(messageViewSelect).
		Joins(messageViewJoins).
		Where("m.room_id = ? AND m.is_direct_message = false", roomID).
		Order("m.created_at ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return r.withAttachments(ctx, views)
}

func (r *PostgresMessageRepository) ListDirectThread(ctx context.Context, userA, userB uuid.UUID) ([]chat.MessageView, error) {
	var views []chat.MessageView
	err := r.db.WithContext(ctx).
		Table("chat_messages AS m").
		Select(messageViewSelect).
		Joins(messageViewJoins).
		Where(`m.is_direct_message = true AND (
			(m.author_id = ? AND m.recipient_id = ?) OR
			(m.author_id = ? AND m.recipient_id = ?))`,
			userA, userB, userB, userA).
		Order("m.created_at ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return r.withAttachments(ctx, views)
}

// withAttachments fills the Attachments field of each view in one query.
func (r *PostgresMessageRepository) withAttachments(ctx context.Context, views []chat.MessageView) ([]chat.MessageView, error) {
	if len(views) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}

	var attachments []chat.Attachment
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", ids).
		Order("uploaded_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}

	byMessage := make(map[uuid.UUID][]chat.AttachmentView, len(attachments))
	for _, a := range attachments {
		byMessage[a.MessageID] = append(byMessage[a.MessageID], chat.AttachmentView{
			ID:               a.ID,
			OriginalFilename: a.OriginalFilename,
			FileSize:         a.FileSize,
		})
	}

	for i := range views {
		if list, ok := byMessage[views[i].ID]; ok {
			views[i].Attachments = list
		} else {
			views[i].Attachments = []chat.AttachmentView{}
		}
	}
	return views, nil
}

func (r *PostgresMessageRepository) CreateAttachment(ctx context.Context, a *chat.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *PostgresMessageRepository) GetAttachment(ctx context.Context, id uuid.UUID) (chat.Attachment, error) {
	var a chat.Attachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Attachment{}, apperrors.ErrNotFound
		}
		return chat.Attachment{}, err
	}
	return a, nil
}

func (r *PostgresMessageRepository) ListAttachments(ctx context.Context, messageID uuid.UUID) ([]chat.Attachment, error) {
	var attachments []chat.Attachment
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("uploaded_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *PostgresMessageRepository) AddReaction(ctx context.Context, reaction *chat.Reaction) error {
	res := r.db.WithContext(ctx).Create(reaction)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(res.Error) {
			return apperrors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error {
	res := r.db.WithContext(ctx).
		Delete(&chat.Reaction{}, "message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) ReactionAggregate(ctx context.Context, messageID uuid.UUID) (map[string]chat.ReactionSummary, error) {
	var reactions []chat.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}

	aggregate := make(map[string]chat.ReactionSummary)
	for _, reaction := range reactions {
		summary := aggregate[reaction.Emoji]
		summary.Count++
		summary.UserIDs = append(summary.UserIDs, reaction.UserID)
		aggregate[reaction.Emoji] = summary
	}
	return aggregate, nil
}
