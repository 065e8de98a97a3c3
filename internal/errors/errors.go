package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	InvalidArgs   Kind = "invalid_args"
	NotFound      Kind = "not_found"
	AlreadyExists Kind = "already_exists"
	NotComposite  Kind = "not_composite"
	Validation    Kind = "validation"
	IOFailure     Kind = "io_failure"
	Internal      Kind = "internal"
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// New is Wrap for errors that start here.
func New(kind Kind, op, path, msg string) error {
	return Wrap(kind, op, path, errors.New(msg))
}

// Is reports whether any AppError in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Kind == kind {
			return true
		}
		err = appErr.Err
	}
	return false
}

func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidArgs:
		return fmt.Sprintf("Invalid arguments: %v", appErr.Err)
	case NotFound:
		if appErr.Path == "" {
			return fmt.Sprintf("Repository not found: %v", appErr.Err)
		}
		return fmt.Sprintf("Repository not found: %s (%v)", appErr.Path, appErr.Err)
	case AlreadyExists:
		return fmt.Sprintf("Repository already exists: %s", appErr.Path)
	case NotComposite:
		return fmt.Sprintf("Not a composite repository: %s", appErr.Path)
	case Validation:
		return fmt.Sprintf("Validation failed: %v", appErr.Err)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", appErr.Path, appErr.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}
