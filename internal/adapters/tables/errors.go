package tables

import "fmt"

// ErrMalformedRow reports a table row that cannot be parsed
type ErrMalformedRow struct {
	Table  string
	Line   int
	Reason string
}

func (e *ErrMalformedRow) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.Table, e.Line, e.Reason)
}
