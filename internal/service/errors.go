package service

import (
	"context"
	"errors"

	"github.com/orgatagova/orgatagova/internal/slogx"
)

// Kind classifies a failure so transports can map it without inspecting
// message text.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindInternal        Kind = "internal"
)

// Error is the error type returned by every service operation for expected
// failures.  Message is safe to show to end users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// Validation returns a validation error carrying msg.
func Validation(msg string) *Error { return newError(KindValidation, msg) }

var (
	ErrUnauthenticated  = newError(KindUnauthenticated, "User not authenticated")
	ErrStaleSession     = newError(KindUnauthenticated, "User account not found. Please log in again.")
	ErrInvalidReference = newError(KindUnauthenticated, "Invalid user reference. Please log in again.")

	ErrInvalidID        = newError(KindValidation, "Invalid ID")
	ErrInvalidIDs       = newError(KindValidation, "One or more IDs are invalid")
	ErrNoFieldsToUpdate = newError(KindValidation, "No valid fields to update")

	ErrCarpoolNotFound     = newError(KindNotFound, "Carpool not found")
	ErrParticipantNotFound = newError(KindNotFound, "Participant not found")
	ErrInvalidCode         = newError(KindNotFound, "Invalid invitation code")
	ErrUserNotFound        = newError(KindNotFound, "User not found")

	ErrCarpoolFull          = newError(KindConflict, "Carpool is full")
	ErrAlreadyParticipant   = newError(KindConflict, "User is already a participant")
	ErrCarpoolFinished      = newError(KindConflict, "Carpool is finished")
	ErrCarpoolArchived      = newError(KindConflict, "Carpool is archived")
	ErrAlreadyFinished      = newError(KindConflict, "Carpool is already finished")
	ErrAlreadyArchived      = newError(KindConflict, "Carpool is already archived")
	ErrNotArchived          = newError(KindConflict, "Carpool is not archived")
	ErrFinishArchived       = newError(KindConflict, "Cannot finish an archived carpool")
	ErrUnarchiveFinished    = newError(KindConflict, "Cannot unarchive a finished carpool")
	ErrArchiveFinished      = newError(KindConflict, "Cannot archive a finished carpool")
	ErrHasParticipants      = newError(KindConflict, "Cannot delete carpool with other participants")
	ErrSoberNotNeeded       = newError(KindConflict, "This carpool doesn't need a sober driver")
	ErrSoberAssigned        = newError(KindConflict, "Sober driver already assigned")
	ErrSoberNotParticipant  = newError(KindConflict, "New sober driver must be a participant")
	ErrCodeGenerationFailed = newError(KindInternal, "Failed to generate a unique invitation code")

	ErrNotCreator         = newError(KindForbidden, "Only the creator can manage this carpool")
	ErrCreatorSelfRemoval = newError(KindForbidden, "The creator cannot remove themselves")
	ErrNotAllowed         = newError(KindForbidden, "You are not authorized to perform this action")
	ErrSoberSwapForbidden = newError(KindForbidden, "You are not authorized to change the sober driver")
)

// KindOf returns the Kind of err.  Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// internal logs err with full detail and returns the generic failure
// message for action, e.g. "Failed to join carpool".
func internal(ctx context.Context, action string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	slogx.FromContext(ctx).Error("operation failed", "action", action, "err", err)
	return newError(KindInternal, "Failed to "+action)
}
