package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type DatumKind string

const (
	DatumNone   DatumKind = "none"
	DatumString DatumKind = "string"
	DatumNumber DatumKind = "number"
	DatumMoney  DatumKind = "money"
	DatumDate   DatumKind = "date"
	DatumBool   DatumKind = "bool"
)

// Context identifies the entity and period dimensions a datum is reported against
type Context struct {
	Entity   string
	Period   *Period
	Instant  *time.Time
	Segments map[string]string
}

// ID returns a stable identifier usable as an XBRL contextRef
func (c *Context) ID() string {
	if c == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("ctx")
	if c.Entity != "" {
		sb.WriteString("-" + sanitize(c.Entity))
	}
	switch {
	case c.Period != nil:
		sb.WriteString("-" + c.Period.Start.Format("20060102") + "-" + c.Period.End.Format("20060102"))
	case c.Instant != nil:
		sb.WriteString("-" + c.Instant.Format("20060102"))
	}
	if len(c.Segments) > 0 {
		keys := make([]string, 0, len(c.Segments))
		for k := range c.Segments {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString("-" + sanitize(k) + "-" + sanitize(c.Segments[k]))
		}
	}
	return sb.String()
}

// WithPeriod returns a copy of the context bound to the given duration period
func (c *Context) WithPeriod(p Period) *Context {
	out := &Context{Period: &p}
	if c != nil {
		out.Entity = c.Entity
		out.Segments = c.Segments
	}
	return out
}

// Datum is an identified, contextualised value
type Datum struct {
	ID      string
	Kind    DatumKind
	Value   any
	Context *Context
}

// NoneDatum marks a value that is legitimately absent
func NoneDatum(id string) Datum {
	return Datum{ID: id, Kind: DatumNone}
}

func (d Datum) IsNone() bool {
	return d.Kind == DatumNone || d.Kind == ""
}

// String renders the datum value for plain-text media
func (d Datum) String() string {
	if d.IsNone() {
		return ""
	}
	switch v := d.Value.(type) {
	case time.Time:
		return v.Format("2 January 2006")
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
