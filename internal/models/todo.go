package models

// Completion flags stored in Task.Completed.
const (
	Pending   = 0
	Completed = 1
)

// Task is a single to-do item in a user's list.
// ID is the creation time in Unix milliseconds and is unique within one list.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed int    `json:"completed"`
}

// Done reports whether the task is marked completed.
func (t Task) Done() bool { return t.Completed == Completed }

// Stats summarizes a task list.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

// TodoListResponse is returned by every /api/todos endpoint.
type TodoListResponse struct {
	DisplayName string `json:"display_name"`
	Todos       []Task `json:"todos"`
	Stats       Stats  `json:"stats"`
}

// CreateTaskRequest is the JSON body for POST /api/todos.
type CreateTaskRequest struct {
	Text string `json:"text"`
}
