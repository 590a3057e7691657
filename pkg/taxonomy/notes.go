package taxonomy

import (
	"fmt"

	"gopkg.in/ini.v1"
)

type NoteStore interface {
	Note(id string) (string, bool)
}

type iniNotes struct {
	cfg *ini.File
}

// NewNoteStore loads notes from an INI file with one section per note id
// and the note body under the "text" key.
func NewNoteStore(path string) (NoteStore, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes from %s: %w", path, err)
	}
	return &iniNotes{cfg: cfg}, nil
}

func (n *iniNotes) Note(id string) (string, bool) {
	if !n.cfg.HasSection(id) {
		return "", false
	}
	section := n.cfg.Section(id)
	if !section.HasKey("text") {
		return "", false
	}
	return section.Key("text").String(), true
}

// MapNotes is an in-memory note store
type MapNotes map[string]string

func (m MapNotes) Note(id string) (string, bool) {
	s, ok := m[id]
	return s, ok
}
