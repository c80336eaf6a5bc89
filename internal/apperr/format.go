package apperr

import (
	"github.com/graphql-go/graphql/gqlerrors"
)

// Formatter builds the error formatter installed on the GraphQL handler.
// Domain errors keep their message and extensions. Other resolver failures are
// reduced to a generic internal error when production is true. Parse and
// validation errors produced by graphql-go itself pass through unchanged.
func Formatter(production bool) func(err error) gqlerrors.FormattedError {
	return func(err error) gqlerrors.FormattedError {
		formatted := gqlerrors.FormatError(err)
		original := unwrapLocated(err)
		if original == nil {
			return formatted
		}

		if appErr, ok := As(original); ok {
			formatted.Message = appErr.Message
			formatted.Extensions = appErr.Extensions()
			return formatted
		}

		if production {
			internal := Internal(original)
			formatted.Message = internal.Message
			formatted.Extensions = internal.Extensions()
		}
		return formatted
	}
}

// unwrapLocated returns the resolver error wrapped by graphql-go, or nil when
// the error was raised by graphql-go itself.
func unwrapLocated(err error) error {
	switch e := err.(type) {
	case *gqlerrors.Error:
		return e.OriginalError
	case gqlerrors.Error:
		return e.OriginalError
	case gqlerrors.FormattedError:
		return e.OriginalError()
	default:
		return err
	}
}
