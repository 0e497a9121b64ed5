package lookup

import (
	"errors"
	"fmt"
)

// Error exported by the lookup package
var (
	ErrLookup            = errors.New("lookup error")
	ErrNotFound          = fmt.Errorf("%w organization not found", ErrLookup)
	ErrTransport         = fmt.Errorf("%w registry unavailable", ErrLookup)
	ErrMalformedResponse = fmt.Errorf("%w unexpected registry response", ErrLookup)
	ErrPersistence       = fmt.Errorf("%w failed to store organization", ErrLookup)
)
