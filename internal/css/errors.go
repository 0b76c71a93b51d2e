// internal/css/errors.go
package css

import "errors"

var (
	// ErrUnknownProperty is returned for property names the engine does not consume.
	ErrUnknownProperty = errors.New("unknown css property")
	// ErrInvalidValue is returned when a value does not parse for its property.
	ErrInvalidValue = errors.New("invalid css value")
)
