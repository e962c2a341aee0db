package httpdto

// CreateTaskRequest is used for POST /v1/tasks
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"` // RFC 3339
	AssignedTo  string `json:"assigned_to,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
}

// MoveTaskRequest is used for PATCH /v1/tasks/:id/status
type MoveTaskRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignTaskRequest is used for PATCH /v1/tasks/:id/assignee. An empty
// assignee unassigns the task.
type AssignTaskRequest struct {
	AssignedTo string `json:"assigned_to,omitempty"`
}

// AddCommentRequest is used for POST /v1/tasks/:id/comments
type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateProjectRequest is used for POST /v1/projects
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}
