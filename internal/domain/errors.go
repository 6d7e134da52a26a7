package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidURL        ErrorKind = "invalid_url"
	KindUnreachable       ErrorKind = "unreachable"
	KindNotFound          ErrorKind = "not_found"
	KindMalformedDocument ErrorKind = "malformed_document"
	KindTooManyURLs       ErrorKind = "too_many_urls"
	KindInternal          ErrorKind = "internal"
)

var (
	ErrInvalidURL        = errors.New("invalid match url")
	ErrUnreachable       = errors.New("provider unreachable")
	ErrNotFound          = errors.New("match not found")
	ErrMalformedDocument = errors.New("malformed document")
	ErrTooManyURLs       = errors.New("too many urls")
)

// Retryable reports whether a caller may succeed by trying again later.
func (k ErrorKind) Retryable() bool {
	return k == KindUnreachable
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindUnreachable:
		return ErrUnreachable
	case KindNotFound:
		return ErrNotFound
	case KindMalformedDocument:
		return ErrMalformedDocument
	case KindTooManyURLs:
		return ErrTooManyURLs
	}
	return nil
}

// FetchError is returned by the fetcher. Attempts is 0 when the URL was
// rejected before any request was made.
type FetchError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// ParseError names the document block that was missing or unreadable.
type ParseError struct {
	URL   string
	Block string
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("extract %s: malformed document: %s", e.URL, e.Block)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// PipelineError wraps the fetch or extract failure for one URL.
type PipelineError struct {
	URL   string
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("resolve %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func (e *PipelineError) Kind() ErrorKind { return KindOf(e.Err) }

// BatchError rejects a whole batch before any work starts.
type BatchError struct {
	Kind  ErrorKind
	Size  int
	Limit int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch of %d urls exceeds limit of %d", e.Size, e.Limit)
}

func (e *BatchError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf classifies any error produced by the scraping pipeline.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return KindMalformedDocument
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}
