package domain

import "errors"

// ErrTornDown is returned when dispatching through a domain after Teardown.
var ErrTornDown = errors.New("domain torn down")
