package translation

import (
	"context"
)

// Backend translates an ordered list of strings. The result has the same
// length as the input and result[i] is the translation of sources[i].
type Backend interface {
	// Name identifies the backend in logs and cache namespaces.
	Name() string
	// TranslateAll translates sources. It returns no partial results: on
	// error the returned slice is nil.
	TranslateAll(ctx context.Context, sources []string) ([]string, error)
}

// ProgressFunc is called after each completed unit of work with the number
// of strings translated so far and the total.
type ProgressFunc func(done, total int)

func (f ProgressFunc) report(done, total int) {
	if f != nil {
		f(done, total)
	}
}
