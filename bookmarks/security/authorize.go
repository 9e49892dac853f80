// Package security decides whether a principal may perform an operation on a bookmark owner's data.
package security

import (
	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/internal/types"
)

// Operation names an action guarded by Authorize.
type Operation int

const (
	// OpReadOwn reads bookmarks or tags under the owner's path.
	OpReadOwn Operation = iota
	OpCreate
	OpUpdate
	OpDelete
	// OpAdmin covers unrestricted listing, aggregation and bulk deletion.
	OpAdmin
)

func (o Operation) String() string {
	switch o {
	case OpReadOwn:
		return "read"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Authorize is a pure decision over the principal, the owner id taken from the path and,
// for writes, the userId carried by the payload. It returns nil, ErrUnauthorized,
// ErrUserIDMismatch or ErrForbidden.
func Authorize(p types.Principal, op Operation, ownerID, payloadUserID string) error {
	if err := AuthorizeOwner(p, op, ownerID); err != nil {
		return err
	}
	if p.IsAdmin() && (op == OpUpdate || op == OpDelete || op == OpAdmin) {
		return nil
	}
	if (op == OpCreate || op == OpUpdate) && payloadUserID != p.SubjectID {
		return bookmarksErrors.ErrUserIDMismatch
	}
	return nil
}

// AuthorizeOwner applies the path rules of Authorize without looking at a payload.
// Handlers call it before decoding a request body.
func AuthorizeOwner(p types.Principal, op Operation, ownerID string) error {
	if p.SubjectID == "" {
		return bookmarksErrors.ErrUnauthorized
	}

	switch op {
	case OpAdmin:
		if !p.IsAdmin() {
			return bookmarksErrors.ErrForbidden
		}
		return nil

	case OpUpdate, OpDelete:
		if p.IsAdmin() {
			return nil
		}
	}

	if p.SubjectID != ownerID {
		return bookmarksErrors.ErrUnauthorized
	}
	return nil
}
