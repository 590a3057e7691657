package taxonomy

import (
	"fmt"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// KeyLookup is the configuration key-lookup contract
type KeyLookup interface {
	Get(key string) any
}

// MetadataDef maps a metadata id onto a configuration key
type MetadataDef struct {
	Key     string `mapstructure:"key" yaml:"key"`
	Concept string `mapstructure:"concept" yaml:"concept"`
	Kind    string `mapstructure:"kind" yaml:"kind"`
}

type MetadataStore interface {
	// MetadataByID returns the first fact for id; false when absent
	MetadataByID(id string) (*Fact, bool)
	// AllMetadataByID returns every fact for id, in configuration order
	AllMetadataByID(id string) []Fact
}

type configMetadata struct {
	lookup  KeyLookup
	defs    map[string]MetadataDef
	context *domain.Context
}

// NewMetadataStore resolves metadata facts from configuration keys. Facts
// are reported against ctx.
func NewMetadataStore(lookup KeyLookup, defs map[string]MetadataDef, ctx *domain.Context) MetadataStore {
	return &configMetadata{lookup: lookup, defs: defs, context: ctx}
}

func (m *configMetadata) MetadataByID(id string) (*Fact, bool) {
	facts := m.AllMetadataByID(id)
	if len(facts) == 0 {
		return nil, false
	}
	return &facts[0], true
}

func (m *configMetadata) AllMetadataByID(id string) []Fact {
	def, ok := m.defs[id]
	if !ok {
		def = MetadataDef{Key: id}
	}
	raw := m.lookup.Get(def.Key)
	if raw == nil {
		return nil
	}

	var values []any
	switch v := raw.(type) {
	case []any:
		values = v
	case []string:
		for _, s := range v {
			values = append(values, s)
		}
	default:
		values = []any{v}
	}

	facts := make([]Fact, 0, len(values))
	for _, v := range values {
		facts = append(facts, Fact{
			Name:  def.Concept,
			Datum: toDatum(id, def.Kind, v, m.context),
		})
	}
	return facts
}

func toDatum(id, kind string, v any, ctx *domain.Context) domain.Datum {
	d := domain.Datum{ID: id, Value: v, Context: ctx}
	switch val := v.(type) {
	case bool:
		d.Kind = domain.DatumBool
	case int, int64, float64:
		d.Kind = domain.DatumNumber
	case time.Time:
		d.Kind = domain.DatumDate
	case string:
		d.Kind = domain.DatumString
		if kind == string(domain.DatumDate) {
			if t, err := time.Parse("2006-01-02", val); err == nil {
				d.Kind, d.Value = domain.DatumDate, t
			}
		}
	default:
		d.Kind = domain.DatumString
		d.Value = fmt.Sprint(v)
	}
	return d
}
