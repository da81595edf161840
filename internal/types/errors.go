package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidProductID = errors.New("invalid product id: expected RJ followed by digits")
	ErrInvalidMaxPages  = errors.New("invalid max pages")
	ErrWaitTimeout      = errors.New("timed out waiting for review content")
	ErrNoReviews        = errors.New("no review elements found")
	ErrSessionClosed    = errors.New("browser session is closed")
)

// FetchError wraps errors that occur while loading a listing page.
type FetchError struct {
	URL    string
	Page   int
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error for %s (page %d, %s): %v", e.URL, e.Page, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTimeout reports whether the fetch failed waiting for content.
func (e *FetchError) IsTimeout() bool { return errors.Is(e.Err, ErrWaitTimeout) }

// ParseError wraps errors that occur while extracting a single field.
type ParseError struct {
	Field    string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for field %s (selector=%q): %v", e.Field, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
