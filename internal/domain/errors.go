package domain

import (
	"errors"
	"fmt"
)

// Extraction failure kinds. Match them with errors.Is on the error returned by Extract.
var (
	ErrMissingTitle         = errors.New("missing title")
	ErrMissingEnclosure     = errors.New("missing enclosure")
	ErrInvalidEnclosureSize = errors.New("invalid enclosure size")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingOrInvalidDate = errors.New("missing or invalid publication date")
)

// ExtractionError reports why a feed item could not become an Episode
type ExtractionError struct {
	Kind   error  // one of the Err* sentinels above
	Item   string // title of the item, empty when the title itself is missing
	Detail string
	Err    error // underlying parse error, if any
}

func newExtractionError(kind error, item, detail string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Item: item, Detail: detail, Err: err}
}

func (e *ExtractionError) Error() string {
	msg := e.Kind.Error()
	if e.Item != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Item)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the failure kind
func (e *ExtractionError) Is(target error) bool {
	return target == e.Kind
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
