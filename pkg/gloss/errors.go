package gloss

import "errors"

// Sentinel errors for the failure classes of a lookup.
var (
	ErrTransport  = errors.New("transport error")
	ErrConversion = errors.New("conversion error")
	ErrCache      = errors.New("cache error")
	ErrNotFound   = errors.New("not found")
)

// NotFoundError is the terminal failure of a lookup that found neither an
// entry nor, in definition mode, any suggestions.
type NotFoundError struct {
	Mode Mode
}

func (e *NotFoundError) Error() string {
	if e.Mode == Etymology {
		return "Etymology not found"
	}
	return "Definition not found"
}

// Is lets errors.Is(err, ErrNotFound) match a *NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
