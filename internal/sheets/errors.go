package sheets

import "fmt"

// FetchError reports a non-2xx response from the data source.
type FetchError struct {
	Sheet      string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch sheet %q: HTTP %d", e.Sheet, e.StatusCode)
}

// ParseError reports a response the reader could not turn into a table.
type ParseError struct {
	Sheet  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse sheet %q: %s: %v", e.Sheet, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse sheet %q: %s", e.Sheet, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
