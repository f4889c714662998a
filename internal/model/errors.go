package model

import "fmt"

type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// NotFoundError reports a root, or an entry below it, that could not be
// opened or read.
type NotFoundError struct {
	Role Role
	Kind Kind
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found: %s: %v", e.Role, e.Kind, e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
