package service

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxTextLen is the longest name or email, in characters, the store accepts.
const MaxTextLen = 50

var (
	ErrNotFound     = errors.New("not found")
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrItemNotFound = fmt.Errorf("item %w", ErrNotFound)

	// ErrInvalidInput is returned when a required field is missing or falsy.
	ErrInvalidInput = errors.New("invalid data")
)

// DataIntegrityError reports an order whose item no longer exists in the store.
type DataIntegrityError struct {
	OrderID int
	ItemID  int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation: order %d references missing item %d", e.OrderID, e.ItemID)
}

// isFalsyString and isFalsyNumber reproduce a truthiness check: the empty string and
// zero are rejected as if they were absent.
func isFalsyString(s string) bool {
	return s == ""
}

func isFalsyNumber[T int | float64](n T) bool {
	return n == 0
}

func tooLong(s string) bool {
	return utf8.RuneCountInString(s) > MaxTextLen
}
