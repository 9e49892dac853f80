// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import "time"

// Common errors shared by every storage driver. Repositories translate
// driver-specific failures into these so callers can use errors.Is.
var (
	ErrNoDocuments      = NewRepositoryError("no documents found", "NOT_FOUND")
	ErrDuplicateKey     = NewRepositoryError("duplicate key error", "DUPLICATE_KEY")
	ErrInvalidFilter    = NewRepositoryError("invalid filter", "INVALID_FILTER")
	ErrConnectionFailed = NewRepositoryError("database connection failed", "CONNECTION_FAILED")
)

// RepositoryError represents a repository specific error
type RepositoryError struct {
	Message string
	Code    string
	Time    time.Time
}

func (e *RepositoryError) Error() string {
	return e.Message
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(message, code string) *RepositoryError {
	return &RepositoryError{
		Message: message,
		Code:    code,
		Time:    time.Now(),
	}
}
