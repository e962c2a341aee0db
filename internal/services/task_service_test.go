package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/domain/task"
	"teamhub/internal/domain/user"
	apperrors "teamhub/pkg/errors"
)

type fakeTaskRepo struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]task.Task
	comments map[uuid.UUID][]task.Comment
	activity map[uuid.UUID][]task.ActivityLog
	projects map[uuid.UUID]task.Project
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:    make(map[uuid.UUID]task.Task),
		comments: make(map[uuid.UUID][]task.Comment),
		activity: make(map[uuid.UUID][]task.ActivityLog),
		projects: make(map[uuid.UUID]task.Project),
	}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *task.Task, activity *task.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = *t
	r.activity[t.ID] = append(r.activity[t.ID], *activity)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return task.Task{}, apperrors.ErrNotFound
	}
	return t, nil
}

func (r *fakeTaskRepo) ListByStatus(_ context.Context, status string) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []task.Task{}
	for _, t := range r.tasks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, activity *task.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.Status = status
	r.tasks[id] = t
	r.activity[id] = append(r.activity[id], *activity)
	return nil
}

func (r *fakeTaskRepo) Assign(_ context.Context, id uuid.UUID, assignee uuid.NullUUID, activity *task.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.AssignedTo = assignee
	r.tasks[id] = t
	r.activity[id] = append(r.activity[id], *activity)
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) CreateComment(_ context.Context, c *task.Comment, activity *task.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.TaskID] = append(r.comments[c.TaskID], *c)
	r.activity[c.TaskID] = append(r.activity[c.TaskID], *activity)
	return nil
}

func (r *fakeTaskRepo) ListComments(_ context.Context, taskID uuid.UUID) ([]task.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]task.Comment{}, r.comments[taskID]...), nil
}

func (r *fakeTaskRepo) ListActivity(_ context.Context, taskID uuid.UUID) ([]task.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]task.ActivityLog{}, r.activity[taskID]...), nil
}

func (r *fakeTaskRepo) CreateProject(_ context.Context, p *task.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = *p
	return nil
}

func (r *fakeTaskRepo) GetProject(_ context.Context, id uuid.UUID) (task.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return task.Project{}, apperrors.ErrNotFound
	}
	return p, nil
}

func (r *fakeTaskRepo) ListProjects(_ context.Context) ([]task.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []task.Project{}
	for _, p := range r.projects {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeTaskRepo) DeleteProject(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

type taskFixture struct {
	svc     *TaskService
	repo    *fakeTaskRepo
	users   *fakeUserRepo
	creator user.User
	other   user.User
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	creator := user.User{ID: uuid.New(), Username: "carol", Role: user.RoleMember}
	other := user.User{ID: uuid.New(), Username: "dave", Role: user.RoleMember}

	f := &taskFixture{
		repo:    newFakeTaskRepo(),
		users:   newFakeUserRepo(creator, other),
		creator: creator,
		other:   other,
	}
	f.svc = NewTaskService(f.repo, f.users)
	return f
}

func TestCreateTaskDefaultsAndActivity(t *testing.T) {
	f := newTaskFixture(t)

	created, err := f.svc.Create(context.Background(), CreateTaskInput{
		Title:     "  ship the release  ",
		CreatorID: f.creator.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "ship the release", created.Title)
	assert.Equal(t, task.StatusTodo, created.Status)
	assert.Equal(t, task.PriorityMedium, created.Priority)

	trail, err := f.svc.Activity(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, task.ActionCreated, trail[0].Action)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateTaskInput{Title: "  ", CreatorID: f.creator.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.Create(ctx, CreateTaskInput{Title: "x", Priority: "urgent", CreatorID: f.creator.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	ghost := uuid.New()
	_, err = f.svc.Create(ctx, CreateTaskInput{Title: "x", AssignedTo: &ghost, CreatorID: f.creator.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMoveStatusAppendsActivity(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateTaskInput{Title: "x", CreatorID: f.creator.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.MoveStatus(ctx, f.creator.ID, created.ID, task.StatusInProgress))

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)

	trail, err := f.svc.Activity(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, task.ActionStatusChanged, trail[1].Action)
	assert.Equal(t, "todo -> in_progress", trail[1].Details)
}

func TestMoveStatusNoopWhenUnchanged(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateTaskInput{Title: "x", CreatorID: f.creator.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.MoveStatus(ctx, f.creator.ID, created.ID, task.StatusTodo))
	trail, err := f.svc.Activity(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 1)

	err = f.svc.MoveStatus(ctx, f.creator.ID, created.ID, "archived")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAssignAndUnassign(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateTaskInput{Title: "x", CreatorID: f.creator.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.Assign(ctx, f.creator.ID, created.ID, &f.other.ID))
	got, _ := f.svc.Get(ctx, created.ID)
	assert.Equal(t, f.other.ID, got.AssignedTo.UUID)
	assert.True(t, got.AssignedTo.Valid)

	require.NoError(t, f.svc.Assign(ctx, f.creator.ID, created.ID, nil))
	got, _ = f.svc.Get(ctx, created.ID)
	assert.False(t, got.AssignedTo.Valid)

	trail, err := f.svc.Activity(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, "assigned to dave", trail[1].Details)
	assert.Equal(t, "unassigned", trail[2].Details)
}

func TestDeleteTaskCreatorOrModerator(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateTaskInput{Title: "x", CreatorID: f.creator.ID})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.other.ID, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	moderator := user.User{ID: uuid.New(), Username: "mod", Role: user.RoleModerator}
	require.NoError(t, f.users.Create(ctx, &moderator))
	require.NoError(t, f.svc.Delete(ctx, moderator.ID, created.ID))

	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddCommentAppendsActivity(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, CreateTaskInput{Title: "x", CreatorID: f.creator.ID})
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.other.ID, created.ID, "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	comment, err := f.svc.AddComment(ctx, f.other.ID, created.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "looks good", comment.Content)

	comments, err := f.svc.Comments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	trail, err := f.svc.Activity(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, task.ActionCommented, trail[1].Action)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, CreateTaskInput{Title: "a", CreatorID: f.creator.ID})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateTaskInput{Title: "b", CreatorID: f.creator.ID})
	require.NoError(t, err)
	require.NoError(t, f.svc.MoveStatus(ctx, f.creator.ID, first.ID, task.StatusDone))

	done, err := f.svc.List(ctx, task.StatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "a", done[0].Title)

	all, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.List(ctx, "bogus")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDeleteProjectAdminOnly(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	project, err := f.svc.CreateProject(ctx, f.creator.ID, "launch", "")
	require.NoError(t, err)

	err = f.svc.DeleteProject(ctx, f.creator.ID, project.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	admin := user.User{ID: uuid.New(), Username: "root", Role: user.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, &admin))
	require.NoError(t, f.svc.DeleteProject(ctx, admin.ID, project.ID))

	projects, err := f.svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
