package spectypes

import (
	"errors"
	"fmt"
)

// UnknownEntityError is returned when a query or schema lookup names an
// entity that is not registered. It is the only fatal search error a
// well-formed request can produce.
type UnknownEntityError struct {
	Entity string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity: %s", e.Entity)
}

// UnsupportedFormatError is returned when export options name a format no
// serializer is registered for.
type UnsupportedFormatError struct {
	Format ExportFormat
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}

// IsUnknownEntity reports whether err wraps an UnknownEntityError.
func IsUnknownEntity(err error) bool {
	var target *UnknownEntityError
	return errors.As(err, &target)
}

// IsUnsupportedFormat reports whether err wraps an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}
