package registry

import "errors"

var (
	ErrNilState           = errors.New("collection registry: state not configured")
	ErrCollectionNotFound = errors.New("collection registry: collection not found")
)
