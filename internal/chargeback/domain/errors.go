package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCasesUnavailable    = errors.New("cases_unavailable")
	ErrInvalidChargebackID = errors.New("invalid_chargeback_id")
)

// StoreError reports a failed read against the case store. A StoreError never
// accompanies partial results.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "store error"
	}
	if e.Op == "" {
		return fmt.Sprintf("store error: %v", e.Err)
	}
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsStoreError reports whether err is or wraps a StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
