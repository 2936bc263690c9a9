package domain

import (
	"errors"
	"fmt"
)

// Error classes. Callers classify with errors.Is against these.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
	ErrTransient  = errors.New("transient store error")
)

var (
	ErrPollNotFound       = fmt.Errorf("poll %w", ErrNotFound)
	ErrGroupNotFound      = fmt.Errorf("group %w", ErrNotFound)
	ErrPersonNotFound     = fmt.Errorf("person %w", ErrNotFound)
	ErrUnknownEmail       = fmt.Errorf("email %w", ErrNotFound)
	ErrNotPollMember      = fmt.Errorf("%w: not on this poll's roster", ErrForbidden)
	ErrNotAdmin           = fmt.Errorf("%w: admin rights required", ErrForbidden)
	ErrPollClosed         = fmt.Errorf("%w: poll is closed", ErrForbidden)
	ErrInvalidChoice      = fmt.Errorf("%w: invalid vote choice", ErrBadRequest)
	ErrInvalidSlug        = fmt.Errorf("%w: invalid slug", ErrBadRequest)
	ErrInvalidName        = fmt.Errorf("%w: name is required", ErrBadRequest)
	ErrUnknownReference   = fmt.Errorf("%w: unknown reference", ErrBadRequest)
	ErrSlugTaken          = fmt.Errorf("%w: slug already in use", ErrConflict)
	ErrNotificationFailed = errors.New("notification failed")
)
