package frames

import (
	"errors"
	"fmt"

	"scrollreel/internal/services"
)

// Kind classifies a frame operation failure.
type Kind string

const (
	KindTransport            Kind = "transport_error"
	KindUnsupportedExtension Kind = "unsupported_extension"
	KindFileTooLarge         Kind = "file_too_large"
	KindContentTypeMismatch  Kind = "content_type_mismatch"
	KindMalformedName        Kind = "malformed_name"
	KindNonNumericOrdinal    Kind = "non_numeric_ordinal"
	KindOrdinalOutOfRange    Kind = "ordinal_out_of_range"
	KindDimensionMismatch    Kind = "dimension_mismatch"
	KindPersistence          Kind = "persistence_error"
	KindNotFound             Kind = "not_found"
)

// Marker returns the services sentinel used to classify the kind.
func (k Kind) Marker() error {
	switch k {
	case KindPersistence:
		return services.ErrPersistence
	case KindNotFound:
		return services.ErrNotFound
	case "":
		return services.ErrTransient
	default:
		return services.ErrInput
	}
}

// Error is the typed failure returned by the parser, the validator, and the
// ingestion pipeline. Message is safe to show to the author.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError builds an Error with a formatted message.
func NewError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Kind.Marker()}
	}
	return []error{e.Kind.Marker(), e.Err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// MessageOf returns the author-facing message of err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}
