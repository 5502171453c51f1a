package razorblog

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrValidation is returned when a comment fails field validation.
// No write is performed.
var ErrValidation = errors.New("razorblog: validation failed")

// ErrMalformedID marks a comment-thread path whose post id segment is not
// a valid identifier. The router treats the path as non-matching.
var ErrMalformedID = errors.New("razorblog: malformed identifier")
