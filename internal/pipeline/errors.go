package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"swf-translator/internal/store"
)

// ErrNoStore is returned when a phase needs a string store that does not exist.
var ErrNoStore = errors.New("no string store found, run gather first")

// IncompleteTranslationError lists store entries that have no translation.
type IncompleteTranslationError struct {
	IDs []int
}

func (e *IncompleteTranslationError) Error() string {
	const shown = 10
	ids := make([]string, 0, shown)
	for i, id := range e.IDs {
		if i == shown {
			ids = append(ids, "...")
			break
		}
		ids = append(ids, fmt.Sprint(id))
	}
	return fmt.Sprintf("%d strings have no translation (ids %s)", len(e.IDs), strings.Join(ids, ", "))
}

// StaleAssetError lists asset files that changed since the store was gathered.
type StaleAssetError struct {
	Changed []string
	Missing []string
	Added   []string
}

func (e *StaleAssetError) Error() string {
	var parts []string
	if len(e.Changed) > 0 {
		parts = append(parts, "modified: "+strings.Join(e.Changed, ", "))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Added) > 0 {
		parts = append(parts, "not gathered: "+strings.Join(e.Added, ", "))
	}
	return "assets changed since gather (" + strings.Join(parts, "; ") + ")"
}

func (e *StaleAssetError) empty() bool {
	return len(e.Changed) == 0 && len(e.Missing) == 0 && len(e.Added) == 0
}

// PhaseError reports an operation refused because of the store's phase.
type PhaseError struct {
	Op    string
	Phase store.Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("cannot %s: assets were already exported from this store (phase %q), re-running would mix source and translated text", e.Op, e.Phase)
}
