package comment

import "errors"

var (
	ErrNotFound  = errors.New("comment not found")
	ErrNotAuthor = errors.New("only the comment author can do this")
)
