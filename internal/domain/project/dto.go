package project

type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

type UpdateRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type MemberRequest struct {
	UserID int64 `json:"userId" validate:"required"`
}
