// Package selection picks the final top-K recommendations from scored candidates while
// keeping any single company from dominating the list.
package selection

import "fmt"

// Error represents an error that occurs during candidate selection
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
