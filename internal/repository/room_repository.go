package repository

import (
	"context"
	"errors"

	"teamhub/internal/domain/chat"
	apperrors "teamhub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, room *chat.Room) error {
	res := r.db.WithContext(ctx).Create(room)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(res.Error) {
			return apperrors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Room, error) {
	var room chat.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Room{}, apperrors.ErrNotFound
		}
		return chat.Room{}, err
	}
	return room, nil
}

func (r *PostgresRoomRepository) GetByName(ctx context.Context, name string) (chat.Room, error) {
	var room chat.Room
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Room{}, apperrors.ErrNotFound
		}
		return chat.Room{}, err
	}
	return room, nil
}

func (r *PostgresRoomRepository) ListPublic(ctx context.Context) ([]chat.Room, error) {
	var rooms []chat.Room
	err := r.db.WithContext(ctx).
		Where("is_private = false").
		Order("name ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// Delete removes the room and every message in it. Attachments and reactions
// of those messages go with them.
func (r *PostgresRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var messageIDs []uuid.UUID
		if err := tx.Model(&chat.Message{}).
			Where("room_id = ?", id).
			Pluck("id", &messageIDs).Error; err != nil {
			return err
		}
		if len(messageIDs) > 0 {
			if err := tx.Delete(&chat.Attachment{}, "message_id IN ?", messageIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&chat.Reaction{}, "message_id IN ?", messageIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&chat.Message{}, "id IN ?", messageIDs).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&chat.Room{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// DeleteAllExcept removes every room whose name differs from the given one,
// messages included. Used by the admin clear-all operation, which must keep
// the General room alive.
func (r *PostgresRoomRepository) DeleteAllExcept(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM message_attachments`).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM message_reactions`).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM chat_messages`).Error; err != nil {
			return err
		}
		return tx.Delete(&chat.Room{}, "name <> ?", name).Error
	})
}
