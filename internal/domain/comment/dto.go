package comment

type CreateRequest struct {
	Body string `json:"body" validate:"required"`
}

type UpdateRequest struct {
	Body string `json:"body" validate:"required"`
}
