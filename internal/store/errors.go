package store

import "errors"

var ErrNotFound = errors.New("service record not found")
