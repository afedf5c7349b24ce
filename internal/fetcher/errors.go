package fetcher

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindNetwork covers transport failures and timeouts.
	KindNetwork Kind = iota + 1
	// KindStatus is a non-2xx response.
	KindStatus
	// KindDecode is a body that is not valid JSON for the record type.
	KindDecode
	// KindShape is valid JSON that holds no usable records.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Error describes a failed fetch. List fetchers return it together with an
// empty, non-nil slice.
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: unexpected status code %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s error: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a fetch error, or 0 when err is not one.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
