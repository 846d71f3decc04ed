package db

import "errors"

// Domain-level database error sentinels, shared by every store implementation.
var (
	ErrLookupNotFound = errors.New("lookup not found")
)
