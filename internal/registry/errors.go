package registry

import (
	"errors"
	"fmt"
)

// Error exported by the registry package
var (
	ErrRegistry          = errors.New("registry error")
	ErrTransport         = fmt.Errorf("%w transport failure", ErrRegistry)
	ErrMalformedResponse = fmt.Errorf("%w malformed response", ErrRegistry)
)
