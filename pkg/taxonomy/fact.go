// Package taxonomy supplies the facts and notes that reports tag and
// interpolate: metadata facts resolved from configuration and note texts
// from a note store.
package taxonomy

import (
	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// FactWriter is implemented by every output medium that can show a fact
type FactWriter interface {
	WriteText(s string) error
	WriteFact(f Fact) error
}

// Fact is a datum bound to a taxonomy concept
type Fact struct {
	Name string
	domain.Datum
}

// Render writes the fact into w. Absent facts write nothing.
func (f Fact) Render(w FactWriter) error {
	if f.IsNone() {
		return nil
	}
	return w.WriteFact(f)
}
