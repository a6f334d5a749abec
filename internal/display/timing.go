package display

import (
	"fmt"
	"io"
	"time"
)

// WriteTiming prints the elapsed time of the concurrent and the sequential
// search in nanoseconds, one line each.
func WriteTiming(w io.Writer, concurrent, sequential time.Duration) error {
	_, err := fmt.Fprintf(w,
		"Time elapsed for multi-threaded search: %d ns\nTime elapsed for single-threaded search: %d ns\n",
		concurrent.Nanoseconds(), sequential.Nanoseconds(),
	)
	return err
}
