package util

import (
	"github.com/matryer/try"
)

// RetryOnce runs fn, and if it reports retry=true together with a non-nil
// error (meaning "not ready yet, worth trying again") runs it exactly one
// more time before giving up; a nil error ends the loop whatever retry
// says. It returns the error of the last run. It backs the bounded condvar-wait retry used by the entry-fetch path
// described in the concurrency model: forward progress is guaranteed even
// when a scan attempt silently fails to produce anything.
func RetryOnce(fn func(attempt int) (retry bool, err error)) error {
	return try.Do(func(attempt int) (bool, error) {
		retry, err := fn(attempt)
		return retry && attempt < 2, err
	})
}
