package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

type mapLookup map[string]any

func (m mapLookup) Get(key string) any { return m[key] }

type captureWriter struct {
	text  []string
	facts []Fact
}

func (c *captureWriter) WriteText(s string) error {
	c.text = append(c.text, s)
	return nil
}

func (c *captureWriter) WriteFact(f Fact) error {
	c.facts = append(c.facts, f)
	return nil
}

func TestMetadataStore_ResolvesConfiguredKeys(t *testing.T) {
	// Given
	lookup := mapLookup{
		"metadata.business.company-name": "Example Ltd",
		"metadata.directors":             []any{"A. Smith", "B. Jones"},
		"metadata.business.incorporated": "2019-03-14",
	}
	defs := map[string]MetadataDef{
		"company-name": {Key: "metadata.business.company-name", Concept: "uk-bus:EntityCurrentLegalOrRegisteredName"},
		"directors":    {Key: "metadata.directors", Concept: "uk-bus:NameEntityOfficer"},
		"incorporated": {Key: "metadata.business.incorporated", Kind: "date"},
	}
	ctx := &domain.Context{Entity: "12345678"}
	store := NewMetadataStore(lookup, defs, ctx)

	// When
	name, ok := store.MetadataByID("company-name")
	directors := store.AllMetadataByID("directors")
	inc, incOK := store.MetadataByID("incorporated")

	// Then
	require.True(t, ok)
	assert.Equal(t, "Example Ltd", name.Value)
	assert.Equal(t, "uk-bus:EntityCurrentLegalOrRegisteredName", name.Name)
	assert.Equal(t, domain.DatumString, name.Kind)
	assert.Same(t, ctx, name.Context)

	require.Len(t, directors, 2)
	assert.Equal(t, "B. Jones", directors[1].Value)

	require.True(t, incOK)
	assert.Equal(t, domain.DatumDate, inc.Kind)
	assert.Equal(t, time.Date(2019, 3, 14, 0, 0, 0, 0, time.UTC), inc.Value)
}

func TestMetadataStore_MissingIsSoftAbsence(t *testing.T) {
	store := NewMetadataStore(mapLookup{}, nil, nil)

	f, ok := store.MetadataByID("company-name")

	assert.False(t, ok)
	assert.Nil(t, f)
	assert.Empty(t, store.AllMetadataByID("company-name"))
}

func TestFact_Render(t *testing.T) {
	// Given
	w := &captureWriter{}
	present := Fact{Name: "c", Datum: domain.Datum{ID: "x", Kind: domain.DatumString, Value: "v"}}
	absent := Fact{Name: "c", Datum: domain.NoneDatum("y")}

	// When
	require.NoError(t, present.Render(w))
	require.NoError(t, absent.Render(w))

	// Then
	require.Len(t, w.facts, 1)
	assert.Equal(t, "x", w.facts[0].ID)
}

func TestNoteStore_LoadsINISections(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.ini")
	content := `[accounting-policies]
text = The accounts have been prepared under ~[metadata:standard]; 100% owned.

[empty]
other = x
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	store, err := NewNoteStore(path)

	// Then
	require.NoError(t, err)
	text, ok := store.Note("accounting-policies")
	assert.True(t, ok)
	assert.Equal(t, "The accounts have been prepared under ~[metadata:standard]; 100% owned.", text)

	_, ok = store.Note("empty")
	assert.False(t, ok)
	_, ok = store.Note("missing")
	assert.False(t, ok)
}

func TestNoteStore_MissingFile(t *testing.T) {
	_, err := NewNoteStore(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestMapNotes(t *testing.T) {
	notes := MapNotes{"a": "text"}
	s, ok := notes.Note("a")
	assert.True(t, ok)
	assert.Equal(t, "text", s)
}
