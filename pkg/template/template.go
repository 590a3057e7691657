// Package template loads the YAML report template: the computations, the
// worksheet layouts and the order document elements are rendered in.
package template

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

var ErrInvalidTemplate = errors.New("invalid template")

type WorksheetKind string

const (
	KindSimple      WorksheetKind = "simple"
	KindFlows       WorksheetKind = "flows"
	KindMultiPeriod WorksheetKind = "multi-period"
	KindTable       WorksheetKind = "table"
)

type ElementKind string

const (
	ElementWorksheet   ElementKind = "worksheet"
	ElementNotes       ElementKind = "notes"
	ElementNoteHeading ElementKind = "note-heading"
	ElementTitle       ElementKind = "title"
)

// Entry is one line of a flows or multi-period worksheet. Type applies to
// flows only, the ranks to multi-period only.
type Entry struct {
	Type        worksheet.EntryType `yaml:"type"`
	Computation string              `yaml:"computation"`
	Rank        int                 `yaml:"rank"`
	TotalRank   int                 `yaml:"total-rank"`
}

type Worksheet struct {
	ID           string            `yaml:"id"`
	Kind         WorksheetKind     `yaml:"kind"`
	Description  string            `yaml:"description"`
	Computations []string          `yaml:"computations"`
	Entries      []Entry           `yaml:"entries"`
	Table        *table.Definition `yaml:"table"`
}

// Element is one piece of the rendered document, in order
type Element struct {
	Kind      ElementKind `yaml:"kind"`
	Worksheet string      `yaml:"worksheet"`
	Title     string      `yaml:"title"`
	Level     int         `yaml:"level"`
	// Body is note markup, or note:ID to take the text from the note store
	Body string `yaml:"body"`
}

type Template struct {
	Title        string                          `yaml:"title"`
	Computations []computation.Def               `yaml:"computations"`
	Metadata     map[string]taxonomy.MetadataDef `yaml:"metadata"`
	Worksheets   []Worksheet                     `yaml:"worksheets"`
	Elements     []Element                       `yaml:"elements"`
}

func LoadTemplate(path string) (*Template, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer file.Close()

	return LoadTemplateFromReader(file)
}

func LoadTemplateFromReader(r io.Reader) (*Template, error) {
	var t Template
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	t.applyDefaults()
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func LoadTemplateFromString(content string) (*Template, error) {
	return LoadTemplateFromReader(strings.NewReader(content))
}

func (t *Template) applyDefaults() {
	for i := range t.Elements {
		if t.Elements[i].Kind == ElementNoteHeading && t.Elements[i].Level == 0 {
			t.Elements[i].Level = 1
		}
	}
}

// Worksheet finds a worksheet layout by id
func (t *Template) Worksheet(id string) (Worksheet, bool) {
	for _, ws := range t.Worksheets {
		if ws.ID == id {
			return ws, true
		}
	}
	return Worksheet{}, false
}

func (t *Template) WorksheetIDs() []string {
	ids := make([]string, 0, len(t.Worksheets))
	for _, ws := range t.Worksheets {
		ids = append(ids, ws.ID)
	}
	return ids
}

// Validate checks the template's shape. References between elements and
// worksheets are resolved at render time.
func Validate(t *Template) error {
	if t == nil {
		return fmt.Errorf("%w: template is nil", ErrInvalidTemplate)
	}
	seen := make(map[string]bool)
	for i, ws := range t.Worksheets {
		if ws.ID == "" {
			return fmt.Errorf("%w: worksheet[%d]: id is required", ErrInvalidTemplate, i)
		}
		if seen[ws.ID] {
			return fmt.Errorf("%w: duplicate worksheet %q", ErrInvalidTemplate, ws.ID)
		}
		seen[ws.ID] = true
		if err := validateWorksheet(ws); err != nil {
			return err
		}
	}
	for i, el := range t.Elements {
		if err := validateElement(el, i); err != nil {
			return err
		}
	}
	return nil
}

func validateWorksheet(ws Worksheet) error {
	switch ws.Kind {
	case KindSimple:
		if len(ws.Computations) == 0 {
			return fmt.Errorf("%w: worksheet %q: computations are required", ErrInvalidTemplate, ws.ID)
		}
	case KindFlows:
		for j, e := range ws.Entries {
			switch e.Type {
			case worksheet.EntryHeading, worksheet.EntryItems, worksheet.EntryTotal,
				worksheet.EntrySuperTotal, worksheet.EntryBreak:
			default:
				return fmt.Errorf("%w: worksheet %q entry[%d]: unknown entry type %q",
					ErrInvalidTemplate, ws.ID, j, e.Type)
			}
			if e.Type != worksheet.EntryBreak && e.Computation == "" {
				return fmt.Errorf("%w: worksheet %q entry[%d]: computation is required",
					ErrInvalidTemplate, ws.ID, j)
			}
		}
	case KindMultiPeriod:
		for j, e := range ws.Entries {
			if e.Computation == "" {
				return fmt.Errorf("%w: worksheet %q entry[%d]: computation is required",
					ErrInvalidTemplate, ws.ID, j)
			}
		}
	case KindTable:
		if ws.Table == nil {
			return fmt.Errorf("%w: worksheet %q: table definition is required", ErrInvalidTemplate, ws.ID)
		}
	default:
		return fmt.Errorf("%w: worksheet %q: unknown kind %q", ErrInvalidTemplate, ws.ID, ws.Kind)
	}
	return nil
}

func validateElement(el Element, i int) error {
	switch el.Kind {
	case ElementWorksheet:
		if el.Worksheet == "" {
			return fmt.Errorf("%w: element[%d]: worksheet is required", ErrInvalidTemplate, i)
		}
	case ElementNotes:
		if el.Body == "" {
			return fmt.Errorf("%w: element[%d]: body is required", ErrInvalidTemplate, i)
		}
	case ElementNoteHeading:
		if el.Level < 1 {
			return fmt.Errorf("%w: element[%d]: level must be at least 1", ErrInvalidTemplate, i)
		}
	case ElementTitle:
	default:
		return fmt.Errorf("%w: element[%d]: unknown kind %q", ErrInvalidTemplate, i, el.Kind)
	}
	return nil
}

// FlowEntries converts the entries for a flows worksheet
func (ws Worksheet) FlowEntries() []worksheet.FlowEntry {
	out := make([]worksheet.FlowEntry, 0, len(ws.Entries))
	for _, e := range ws.Entries {
		out = append(out, worksheet.FlowEntry{Type: e.Type, Computation: e.Computation})
	}
	return out
}

// MultiPeriodEntries converts the entries for a multi-period worksheet
func (ws Worksheet) MultiPeriodEntries() []worksheet.MultiPeriodEntry {
	out := make([]worksheet.MultiPeriodEntry, 0, len(ws.Entries))
	for _, e := range ws.Entries {
		out = append(out, worksheet.MultiPeriodEntry{
			Computation: e.Computation,
			Rank:        e.Rank,
			TotalRank:   e.TotalRank,
		})
	}
	return out
}
