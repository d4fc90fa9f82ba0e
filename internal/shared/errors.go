package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyConverted rejects converting an enquiry that already became a booking.
	ErrAlreadyConverted = errors.New("enquiry already converted")
	// ErrBookingCancelled rejects money operations on a cancelled booking.
	ErrBookingCancelled = errors.New("booking is cancelled")
	// ErrUnauthorized indicates a missing or wrong operator token.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError blocks an action before anything is written.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

// NotFoundError reports a missing enquiry or booking.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps a failed store read or write. The message of the
// underlying error is shown to the operator as-is.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op + ": store failure"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// RenderError reports a failure turning receipt fields into a document.
type RenderError struct {
	Err error
}

func (e RenderError) Error() string { return fmt.Sprintf("render receipt: %v", e.Err) }

func (e RenderError) Unwrap() error { return e.Err }

// UploadError reports a failure storing a rendered document.
type UploadError struct {
	Err error
}

func (e UploadError) Error() string { return fmt.Sprintf("upload receipt: %v", e.Err) }

func (e UploadError) Unwrap() error { return e.Err }

// DeliveryError carries a messaging provider failure.
type DeliveryError struct {
	Provider string
	Status   int
	Payload  string
	Err      error
}

func (e DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s delivery: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s delivery failed with status %d: %s", e.Provider, e.Status, e.Payload)
}

func (e DeliveryError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it already carries a
// domain meaning callers branch on.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		v ValidationError
		n NotFoundError
		p PersistenceError
	)
	if errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &p) ||
		errors.Is(err, ErrAlreadyConverted) || errors.Is(err, ErrBookingCancelled) ||
		errors.Is(err, ErrIdempotencyConflict) {
		return err
	}
	return PersistenceError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

func IsRender(err error) bool {
	var target RenderError
	return errors.As(err, &target)
}

func IsUpload(err error) bool {
	var target UploadError
	return errors.As(err, &target)
}
