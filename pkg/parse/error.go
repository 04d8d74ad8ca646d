package parse

import (
	"fmt"
	"strings"
)

// Error collects every problem found in one input. Positions are byte offsets
// into the input.
type Error struct {
	Errors []ErrorEntry
}

func (err Error) Error() string {
	var b strings.Builder
	if len(err.Errors) == 1 {
		b.WriteString("parse error: ")
	} else {
		fmt.Fprintf(&b, "%v parse errors: ", len(err.Errors))
	}
	for i, e := range err.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%v: %v", e.Position, e.Message)
	}
	return b.String()
}

type ErrorEntry struct {
	Position int
	Message  string
}
