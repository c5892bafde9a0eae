// Package sentinel holds the store-level facts that services translate into
// domain errors. Input validation uses pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no row or map entry for the key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a unique key (email, phone, registration number) is taken.
	ErrConflict = errors.New("conflict")
)
