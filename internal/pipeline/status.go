package pipeline

import (
	"swf-translator/internal/parser"
	"swf-translator/internal/store"
)

// StatusReport summarises a string store.
type StatusReport struct {
	StorePath   string
	Phase       store.Phase
	Settings    store.Settings
	Files       int
	TextFiles   int
	ScriptFiles int
	Strings     int
	Translated  int
	Missing     []int
}

// Complete reports whether every string has a translation.
func (r *StatusReport) Complete() bool { return len(r.Missing) == 0 }

// Status reads the workspace store and reports its progress.
func Status(ws Workspace) (*StatusReport, error) {
	s, err := ws.loadStore()
	if err != nil {
		return nil, err
	}
	r := &StatusReport{
		StorePath: ws.storePath(),
		Phase:     s.Phase,
		Settings:  s.Settings,
		Files:     len(s.Files),
		Strings:   s.Len(),
		Missing:   s.Missing(),
	}
	for _, f := range s.Files {
		switch f.Kind {
		case parser.KindPlainText:
			r.TextFiles++
		case parser.KindActionScript:
			r.ScriptFiles++
		}
	}
	r.Translated = r.Strings - len(r.Missing)
	return r, nil
}

// OpenStore loads the workspace store for direct editing, such as corpus import.
func OpenStore(ws Workspace) (*store.Store, string, error) {
	s, err := ws.loadStore()
	if err != nil {
		return nil, "", err
	}
	return s, ws.storePath(), nil
}

// StoreSettings returns the settings recorded in the workspace store at gather time.
func StoreSettings(ws Workspace) (store.Settings, error) {
	s, err := ws.loadStore()
	if err != nil {
		return store.Settings{}, err
	}
	return s.Settings, nil
}
