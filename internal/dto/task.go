package dto

// TaskRequest is the body of POST /tasks and PUT /tasks/{id}. Missing fields
// decode to nil and are written as NULL.
type TaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assignedTo"`
	Status      *string `json:"status"`
}

type TaskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	AssignedTo  string  `json:"assignedTo"`
	Status      *string `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

// gRPC messages

type TaskIDRequest struct {
	ID int64 `json:"id"`
}

type UpdateTaskRequest struct {
	ID   int64       `json:"id"`
	Task TaskRequest `json:"task"`
}

type TaskListRequest struct{}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

type DeleteTaskResponse struct{}
