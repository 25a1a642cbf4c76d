package btree

import "errors"

// Table errors, named in the teacher's Err-prefixed sentinel style.
var (
	ErrKeyNotFound   = errors.New("btree: key not found")
	ErrValueNotFound = errors.New("btree: value not found for key")
	ErrEmptyKey      = errors.New("btree: key cannot be empty")
	ErrKeyExists     = errors.New("btree: key already exists")
)
