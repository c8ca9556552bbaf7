package deltacodec

import "github.com/mewkiz/deltacodec/internal/codec"

// The public error taxonomy (spec §7). Each type aliases its internal/codec
// counterpart so callers can use errors.As against these names without
// importing the internal package.
type (
	MissingPriorStateError       = codec.MissingPriorStateError
	ValueOutOfRangeError         = codec.ValueOutOfRangeError
	MalformedStreamError         = codec.MalformedStreamError
	IoFailureError               = codec.IoFailureError
	FractionalWidthMismatchError = codec.FractionalWidthMismatchError
)
