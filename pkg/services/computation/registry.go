package computation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

var (
	ErrUnknownComputation = errors.New("unknown computation")
	ErrCycle              = errors.New("computation cycle")
	ErrNoValue            = errors.New("no value for computation")
	ErrInvalidDefinition  = errors.New("invalid computation definition")
)

type Kind string

const (
	KindSimple    Kind = "simple"
	KindBreakdown Kind = "breakdown"
	KindTotal     Kind = "total"
	KindNil       Kind = "nil"
)

// Def is one computation as written in the report template
type Def struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Concept     string   `yaml:"concept"`
	Kind        Kind     `yaml:"kind"`
	Inputs      []string `yaml:"inputs"`
	// Values holds static leaf values keyed by period name
	Values map[string]string `yaml:"values"`
}

type registry struct {
	mu     sync.RWMutex
	defs   map[string]Def
	order  []string
	values ValueSource
	memo   map[string]worksheet.Result
}

// NewRegistry creates a registry over defs. Simple computations read their
// value from values.
func NewRegistry(defs []Def, values ValueSource) (Registry, error) {
	r := &registry{
		defs:   make(map[string]Def, len(defs)),
		values: values,
		memo:   make(map[string]worksheet.Result),
	}
	for _, d := range defs {
		if err := validate(d); err != nil {
			return nil, err
		}
		if _, exists := r.defs[d.ID]; exists {
			return nil, fmt.Errorf("%w: computation %q is already registered", ErrInvalidDefinition, d.ID)
		}
		r.defs[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

func validate(d Def) error {
	if d.ID == "" {
		return fmt.Errorf("%w: computation id cannot be empty", ErrInvalidDefinition)
	}
	switch d.Kind {
	case KindSimple, KindNil:
		return nil
	case KindBreakdown, KindTotal:
		if len(d.Inputs) == 0 {
			return fmt.Errorf("%w: %s computation %q has no inputs", ErrInvalidDefinition, d.Kind, d.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: computation %q has kind %q", ErrInvalidDefinition, d.ID, d.Kind)
	}
}

func (r *registry) Definition(id string) (worksheet.Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return worksheet.Definition{}, fmt.Errorf("%w: %q", ErrUnknownComputation, id)
	}
	return definitionOf(d), nil
}

func (r *registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *registry) Evaluate(ctx context.Context, id string, period domain.Period) (worksheet.Result, error) {
	return r.evaluate(ctx, id, period, nil)
}

func (r *registry) evaluate(ctx context.Context, id string, period domain.Period, stack []string) (worksheet.Result, error) {
	for _, seen := range stack {
		if seen == id {
			return nil, fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(stack, " -> "), id)
		}
	}

	key := memoKey(id, period)
	r.mu.RLock()
	res, ok := r.memo[key]
	r.mu.RUnlock()
	if ok {
		return res, nil
	}

	d, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComputation, id)
	}

	res, err := r.compute(ctx, d, period, append(stack, id))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.memo[key] = res
	r.mu.Unlock()

	zerolog.Ctx(ctx).Trace().
		Str("computation", id).
		Str("period", period.Name).
		Str("value", res.Value().String()).
		Msg("computed")
	return res, nil
}

func (r *registry) compute(ctx context.Context, d Def, period domain.Period, stack []string) (worksheet.Result, error) {
	defn := definitionOf(d)
	switch d.Kind {
	case KindSimple:
		if r.values == nil {
			return nil, fmt.Errorf("%w: %q has no value source", ErrNoValue, d.ID)
		}
		v, err := r.values.Value(ctx, d.ID, period)
		if err != nil {
			return nil, fmt.Errorf("failed to read value of %q: %w", d.ID, err)
		}
		return &worksheet.Simple{Defn: defn, Amount: v}, nil
	case KindNil:
		return &worksheet.Nil{Defn: defn, Amount: decimal.Zero}, nil
	case KindBreakdown, KindTotal:
		items := make([]worksheet.Result, 0, len(d.Inputs))
		sum := decimal.Zero
		for _, in := range d.Inputs {
			item, err := r.evaluate(ctx, in, period, stack)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			sum = sum.Add(item.Value())
		}
		if d.Kind == KindBreakdown {
			return &worksheet.Breakdown{Defn: defn, Amount: sum, Items: items}, nil
		}
		return &worksheet.Total{Defn: defn, Amount: sum, Items: items}, nil
	default:
		return nil, fmt.Errorf("%w: computation %q has kind %q", ErrInvalidDefinition, d.ID, d.Kind)
	}
}

func definitionOf(d Def) worksheet.Definition {
	desc := d.Description
	if desc == "" {
		desc = d.ID
	}
	return worksheet.Definition{ID: d.ID, Description: desc, Concept: d.Concept}
}

func memoKey(id string, p domain.Period) string {
	return id + "|" + p.Name + "|" + p.Start.Format("20060102") + "|" + p.End.Format("20060102")
}

func isNoValue(err error) bool {
	return errors.Is(err, ErrNoValue)
}
