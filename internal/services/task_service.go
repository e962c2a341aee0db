package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"teamhub/internal/domain/task"
	"teamhub/internal/repository"
	apperrors "teamhub/pkg/errors"
)

// TaskService runs the task board. Every mutation appends an activity-log
// row inside the same transaction as the mutation.
type TaskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// CreateTaskInput carries a new task's fields.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
	ProjectID   *uuid.UUID
	CreatorID   uuid.UUID
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (task.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return task.Task{}, apperrors.ErrInvalidInput
	}

	priority := in.Priority
	switch priority {
	case "":
		priority = task.PriorityMedium
	case task.PriorityLow, task.PriorityMedium, task.PriorityHigh:
	default:
		return task.Task{}, apperrors.ErrInvalidInput
	}

	now := time.Now()
	t := task.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      task.StatusTodo,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatorID:   in.CreatorID,
	}
	if in.DueDate != nil {
		t.DueDate.Time = *in.DueDate
		t.DueDate.Valid = true
	}
	if in.AssignedTo != nil {
		if _, err := s.users.GetByID(ctx, *in.AssignedTo); err != nil {
			return task.Task{}, err
		}
		t.AssignedTo = uuid.NullUUID{UUID: *in.AssignedTo, Valid: true}
	}
	if in.ProjectID != nil {
		if _, err := s.tasks.GetProject(ctx, *in.ProjectID); err != nil {
			return task.Task{}, err
		}
		t.ProjectID = uuid.NullUUID{UUID: *in.ProjectID, Valid: true}
	}

	activity := s.activity(t.ID, in.CreatorID, task.ActionCreated, fmt.Sprintf("created %q", title))
	if err := s.tasks.Create(ctx, &t, activity); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (task.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// List returns tasks, optionally filtered to one board column. An empty
// status returns everything; an unknown status is an input error.
func (s *TaskService) List(ctx context.Context, status string) ([]task.Task, error) {
	if status != "" && !task.ValidStatus(status) {
		return nil, apperrors.ErrInvalidInput
	}
	return s.tasks.ListByStatus(ctx, status)
}

func (s *TaskService) MoveStatus(ctx context.Context, actorID, taskID uuid.UUID, status string) error {
	if !task.ValidStatus(status) {
		return apperrors.ErrInvalidInput
	}
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Status == status {
		return nil
	}

	activity := s.activity(taskID, actorID, task.ActionStatusChanged,
		fmt.Sprintf("%s -> %s", t.Status, status))
	return s.tasks.UpdateStatus(ctx, taskID, status, activity)
}

// Assign sets or clears a task's assignee. A nil assignee unassigns.
func (s *TaskService) Assign(ctx context.Context, actorID, taskID uuid.UUID, assignee *uuid.UUID) error {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}

	var target uuid.NullUUID
	details := "unassigned"
	if assignee != nil {
		u, err := s.users.GetByID(ctx, *assignee)
		if err != nil {
			return err
		}
		target = uuid.NullUUID{UUID: u.ID, Valid: true}
		details = "assigned to " + u.Username
	}

	activity := s.activity(taskID, actorID, task.ActionAssigned, details)
	return s.tasks.Assign(ctx, taskID, target, activity)
}

// Delete removes a task. Allowed for the creator or a moderator.
func (s *TaskService) Delete(ctx context.Context, actorID uuid.UUID, taskID uuid.UUID) error {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.CreatorID != actorID {
		actor, err := s.users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.CanModerate() {
			return apperrors.ErrForbidden
		}
	}
	return s.tasks.Delete(ctx, taskID)
}

func (s *TaskService) AddComment(ctx context.Context, authorID, taskID uuid.UUID, content string) (task.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return task.Comment{}, apperrors.ErrInvalidInput
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return task.Comment{}, err
	}

	c := task.Comment{
		ID:        uuid.New(),
		Content:   content,
		TaskID:    taskID,
		UserID:    authorID,
		CreatedAt: time.Now(),
	}
	activity := s.activity(taskID, authorID, task.ActionCommented, "")
	if err := s.tasks.CreateComment(ctx, &c, activity); err != nil {
		return task.Comment{}, err
	}
	return c, nil
}

func (s *TaskService) Comments(ctx context.Context, taskID uuid.UUID) ([]task.Comment, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.tasks.ListComments(ctx, taskID)
}

// Activity returns the audit trail for a task, oldest first.
func (s *TaskService) Activity(ctx context.Context, taskID uuid.UUID) ([]task.ActivityLog, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.tasks.ListActivity(ctx, taskID)
}

func (s *TaskService) CreateProject(ctx context.Context, creatorID uuid.UUID, name, description string) (task.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return task.Project{}, apperrors.ErrInvalidInput
	}
	p := task.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
	}
	if err := s.tasks.CreateProject(ctx, &p); err != nil {
		return task.Project{}, err
	}
	return p, nil
}

func (s *TaskService) ListProjects(ctx context.Context) ([]task.Project, error) {
	return s.tasks.ListProjects(ctx)
}

func (s *TaskService) DeleteProject(ctx context.Context, actorID, projectID uuid.UUID) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if _, err := s.tasks.GetProject(ctx, projectID); err != nil {
		return err
	}
	return s.tasks.DeleteProject(ctx, projectID)
}

func (s *TaskService) activity(taskID, userID uuid.UUID, action, details string) *task.ActivityLog {
	return &task.ActivityLog{
		ID:        uuid.New(),
		Action:    action,
		Details:   details,
		TaskID:    taskID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}
