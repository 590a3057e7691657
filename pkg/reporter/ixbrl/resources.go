package ixbrl

import (
	"sort"

	"golang.org/x/net/html"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

const dateLayout = "2006-01-02"

// header builds the ix:header block declaring every context and unit a
// tagged fact refers to. Contexts are ordered by id.
func (r *Reporter) header() *html.Node {
	resources := element("ix:resources", "")

	ids := make([]string, 0, len(r.contexts))
	for id := range r.contexts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		resources.AppendChild(r.contextNode(id, r.contexts[id]))
	}

	if r.unitUsed {
		unit := element("xbrli:unit", "", attr("id", r.config.Unit))
		unit.AppendChild(withText(element("xbrli:measure", ""), "iso4217:"+r.config.Unit))
		resources.AppendChild(unit)
	}

	h := element("ix:header", "")
	h.AppendChild(resources)
	return h
}

func (r *Reporter) contextNode(id string, c *domain.Context) *html.Node {
	entity := element("xbrli:entity", "")
	entity.AppendChild(withText(element("xbrli:identifier", "", attr("scheme", r.config.Scheme)), c.Entity))
	if len(c.Segments) > 0 {
		dims := make([]string, 0, len(c.Segments))
		for k := range c.Segments {
			dims = append(dims, k)
		}
		sort.Strings(dims)
		segment := element("xbrli:segment", "")
		for _, dim := range dims {
			segment.AppendChild(withText(element("xbrldi:explicitMember", "", attr("dimension", dim)), c.Segments[dim]))
		}
		entity.AppendChild(segment)
	}

	period := element("xbrli:period", "")
	switch {
	case c.Period != nil:
		period.AppendChild(withText(element("xbrli:startDate", ""), c.Period.Start.Format(dateLayout)))
		period.AppendChild(withText(element("xbrli:endDate", ""), c.Period.End.Format(dateLayout)))
	case c.Instant != nil:
		period.AppendChild(withText(element("xbrli:instant", ""), c.Instant.Format(dateLayout)))
	default:
		period.AppendChild(element("xbrli:forever", ""))
	}

	n := element("xbrli:context", "", attr("id", id))
	n.AppendChild(entity)
	n.AppendChild(period)
	return n
}
