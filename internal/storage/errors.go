package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPath is returned when a relative object path is empty.
	ErrEmptyPath = errors.New("storage: empty object path")

	// ErrUnknownEngine is returned by Registry.New for unregistered names.
	ErrUnknownEngine = errors.New("storage: unknown engine")

	// ErrInvalidConfig wraps configuration parsing failures.
	ErrInvalidConfig = errors.New("storage: invalid configuration")
)

// OpError records the engine, operation and remote path of a failed
// remote operation.
type OpError struct {
	Engine string
	Op     string
	Path   string
	Err    error
}

func (e *OpError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s.%s %s: %v", e.Engine, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Engine, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError returns nil when err is nil.
func NewOpError(engine, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Engine: engine, Op: op, Path: path, Err: err}
}

// ConfigError wraps err with ErrInvalidConfig and the engine name.
func ConfigError(engine string, err error) error {
	return fmt.Errorf("%s: %w: %w", engine, ErrInvalidConfig, err)
}
