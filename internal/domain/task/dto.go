package task

type CreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	AssigneeID  *int64 `json:"assigneeId,omitempty"`
}

type UpdateRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	AssigneeID  *int64 `json:"assigneeId,omitempty"`
}
