package repository

import "errors"

// ErrJobNotFound is returned by JobStore.Get for unknown or expired jobs.
var ErrJobNotFound = errors.New("job not found")
