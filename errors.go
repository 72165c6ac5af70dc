package denorm

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors.
var (
	// ErrNotFound is returned when an id has no entity in a collection.
	ErrNotFound = errors.New("denorm: entity not found")

	// ErrInvalidCollectionShape is returned when a collection is neither a
	// sequence of entities nor a map of entities keyed by id.
	ErrInvalidCollectionShape = errors.New("denorm: invalid collection shape")

	// ErrInvalidConfig is returned when an option is given an unusable value.
	ErrInvalidConfig = errors.New("denorm: invalid configuration")
)

// NotFoundError represents an id that has no entity in a collection.
type NotFoundError struct {
	collection string
	id         any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.collection == "" {
		return fmt.Sprintf("denorm: entity not found (id=%v)", e.id)
	}
	return fmt.Sprintf("denorm: %s entity not found (id=%v)", e.collection, e.id)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Collection returns the collection name, if known.
func (e *NotFoundError) Collection() string {
	return e.collection
}

// ID returns the id that was searched for.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError.
func NewNotFoundError(collection string, id any) *NotFoundError {
	return &NotFoundError{collection: collection, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// InvalidCollectionShapeError describes a malformed collection.
type InvalidCollectionShapeError struct {
	Collection string // Collection name, empty when unknown
	Type       string // Go type of the offending value
	Detail     string
}

// Error returns the error string.
func (e *InvalidCollectionShapeError) Error() string {
	var b strings.Builder
	b.WriteString("denorm: invalid collection shape")
	if e.Collection != "" {
		fmt.Fprintf(&b, " for %q", e.Collection)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " (%s)", e.Type)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is reports whether the target matches ErrInvalidCollectionShape.
func (e *InvalidCollectionShapeError) Is(target error) bool {
	return target == ErrInvalidCollectionShape
}

// NewInvalidCollectionShapeError returns a new InvalidCollectionShapeError.
func NewInvalidCollectionShapeError(collection string, value any, detail string) *InvalidCollectionShapeError {
	return &InvalidCollectionShapeError{
		Collection: collection,
		Type:       fmt.Sprintf("%T", value),
		Detail:     detail,
	}
}

// IsInvalidCollectionShape returns true if the error is an InvalidCollectionShapeError.
func IsInvalidCollectionShape(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidCollectionShapeError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidCollectionShape)
}

// ConfigError represents an invalid option value.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("denorm: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("denorm: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError returns a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}

// SourceError wraps a failure while loading a graph from an external source.
type SourceError struct {
	Source string // File path, table name or DSN label
	Op     string // Operation (e.g., "open", "decode", "query")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *SourceError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("denorm: loading %s (%s): %v", e.Source, e.Op, e.Err)
	}
	return fmt.Sprintf("denorm: loading %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError returns a new SourceError.
func NewSourceError(source, op string, err error) *SourceError {
	return &SourceError{Source: source, Op: op, Err: err}
}

// IsSourceError returns true if the error is a SourceError.
func IsSourceError(err error) bool {
	if err == nil {
		return false
	}
	var e *SourceError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "denorm: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("denorm: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors so errors.Is and errors.As see each one.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
