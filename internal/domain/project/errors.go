package project

import "errors"

var (
	ErrNotFound      = errors.New("project not found")
	ErrNotOwner      = errors.New("only the project owner can do this")
	ErrAlreadyMember = errors.New("user is already a project member")
	ErrNotMember     = errors.New("user is not a project member")
)
