package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoScene is returned by operations that need an open scene.
	ErrNoScene = errors.New("editor: no scene open")

	// ErrNoStorage is returned by Open and Save on a session without Storage.
	ErrNoStorage = errors.New("editor: no storage configured")

	// ErrNoPath is returned by Save when neither the call nor the session
	// names a path.
	ErrNoPath = errors.New("editor: no path to save to")
)

// EditError is a rejected edit. Rejected edits leave the scene and the
// history untouched.
type EditError struct {
	// Code identifies the error category.
	Code EditErrorCode

	// Message is a human-readable description.
	Message string

	// Node names the target node, when there is one.
	Node string
}

// EditErrorCode categorizes rejected edits.
type EditErrorCode string

const (
	// ErrCodeInvalidNode indicates a handle that is not attached to the tree.
	ErrCodeInvalidNode EditErrorCode = "INVALID_NODE"

	// ErrCodeNoField indicates a field key missing from the node.
	ErrCodeNoField EditErrorCode = "NO_FIELD"

	// ErrCodeTypeMismatch indicates a value whose DataType differs from the field's.
	ErrCodeTypeMismatch EditErrorCode = "TYPE_MISMATCH"

	// ErrCodeNotElement indicates an element edit on a plain node.
	ErrCodeNotElement EditErrorCode = "NOT_ELEMENT"

	// ErrCodeInvalidValue indicates a value the target cannot hold.
	ErrCodeInvalidValue EditErrorCode = "INVALID_VALUE"

	// ErrCodeOutOfRange indicates an index past the end of a list.
	ErrCodeOutOfRange EditErrorCode = "OUT_OF_RANGE"

	// ErrCodeNoDefinition indicates a definition the database cannot provide.
	ErrCodeNoDefinition EditErrorCode = "NO_DEFINITION"
)

func (e *EditError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsEditError reports whether err is an EditError with the given code.
func IsEditError(err error, code EditErrorCode) bool {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

func editErr(code EditErrorCode, node, format string, args ...any) *EditError {
	return &EditError{Code: code, Node: node, Message: fmt.Sprintf(format, args...)}
}
