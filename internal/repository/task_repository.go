package repository

import (
	"context"
	"errors"
	"time"

	"teamhub/internal/domain/task"
	apperrors "teamhub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresTaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *task.Task, activity *task.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		if activity != nil {
			activity.TaskID = t.ID
			return tx.Create(activity).Error
		}
		return nil
	})
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (task.Task, error) {
	var t task.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Task{}, apperrors.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func (r *PostgresTaskRepository) ListByStatus(ctx context.Context, status string) ([]task.Task, error) {
	var tasks []task.Task
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("due_date ASC NULLS LAST, created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, activity *task.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&task.Task{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		if activity != nil {
			return tx.Create(activity).Error
		}
		return nil
	})
}

func (r *PostgresTaskRepository) Assign(ctx context.Context, id uuid.UUID, assignee uuid.NullUUID, activity *task.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&task.Task{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"assigned_to": assignee,
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		if activity != nil {
			return tx.Create(activity).Error
		}
		return nil
	})
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&task.Comment{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&task.ActivityLog{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&task.Task{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresTaskRepository) CreateComment(ctx context.Context, c *task.Comment, activity *task.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if activity != nil {
			return tx.Create(activity).Error
		}
		return nil
	})
}

func (r *PostgresTaskRepository) ListComments(ctx context.Context, taskID uuid.UUID) ([]task.Comment, error) {
	var comments []task.Comment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *PostgresTaskRepository) ListActivity(ctx context.Context, taskID uuid.UUID) ([]task.ActivityLog, error) {
	var activities []task.ActivityLog
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *PostgresTaskRepository) CreateProject(ctx context.Context, p *task.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostgresTaskRepository) GetProject(ctx context.Context, id uuid.UUID) (task.Project, error) {
	var p task.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Project{}, apperrors.ErrNotFound
		}
		return task.Project{}, err
	}
	return p, nil
}

func (r *PostgresTaskRepository) ListProjects(ctx context.Context) ([]task.Project, error) {
	var projects []task.Project
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *PostgresTaskRepository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uuid.UUID
		if err := tx.Model(&task.Task{}).
			Where("project_id = ?", id).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Delete(&task.Comment{}, "task_id IN ?", taskIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&task.ActivityLog{}, "task_id IN ?", taskIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&task.Task{}, "id IN ?", taskIDs).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&task.Project{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
