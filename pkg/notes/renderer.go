package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

var (
	ErrUnsupportedTag = errors.New("tag kind not yet supported")
	ErrUnknownNote    = errors.New("unknown note")
	ErrUnknownPeriod  = errors.New("unknown period")
	ErrUnbalanced     = errors.New("unbalanced note tags")
)

const notePrefix = "note:"

// Element is an output handle that note content is appended to
type Element interface {
	taxonomy.FactWriter
	// OpenTag starts a tagged span inside the element and returns it
	OpenTag(kind, name string, contextRef *string) (Element, error)
}

type Renderer struct {
	Notes        taxonomy.NoteStore
	Metadata     taxonomy.MetadataStore
	Computations worksheet.Evaluator
	Lookup       taxonomy.KeyLookup
	Periods      []domain.Period
	Context      *domain.Context
}

// Body returns the note text for body, resolving note: keys through the
// note store
func (r *Renderer) Body(body string) (string, error) {
	id, ok := strings.CutPrefix(body, notePrefix)
	if !ok {
		return body, nil
	}
	if r.Notes == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownNote, id)
	}
	text, ok := r.Notes.Note(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNote, id)
	}
	return text, nil
}

// Render expands body into out
func (r *Renderer) Render(ctx context.Context, body string, out Element) error {
	text, err := r.Body(body)
	if err != nil {
		return err
	}

	stack := []Element{out}
	for tok, err := range Parse(text).Tokens() {
		if err != nil {
			return err
		}
		top := stack[len(stack)-1]
		switch tok.Kind {
		case TokenText:
			err = top.WriteText(tok.Text)
		case TokenMetadata:
			err = r.writeMetadata(top, tok)
		case TokenComputation:
			err = r.writeComputation(ctx, top, tok)
		case TokenTagOpen:
			if tok.TagKind != "string" {
				return fmt.Errorf("%w: %q at offset %d", ErrUnsupportedTag, tok.TagKind, tok.Pos)
			}
			var child Element
			child, err = top.OpenTag(tok.TagKind, tok.Name, tok.ContextRef)
			if err == nil {
				stack = append(stack, child)
			}
		case TokenTagClose:
			if len(stack) == 1 {
				return fmt.Errorf("%w: close at offset %d", ErrUnbalanced, tok.Pos)
			}
			stack = stack[:len(stack)-1]
		default:
			return fmt.Errorf("%w: token %s", ErrParse, tok.Kind)
		}
		if err != nil {
			return err
		}
	}
	if len(stack) != 1 {
		return fmt.Errorf("%w: %d open", ErrUnbalanced, len(stack)-1)
	}
	return nil
}

func (r *Renderer) writeMetadata(out Element, tok Token) error {
	var fact *taxonomy.Fact
	if r.Metadata != nil {
		fact, _ = r.Metadata.MetadataByID(tok.Name)
	}
	if fact == nil || fact.IsNone() {
		if tok.Null == "" {
			return nil
		}
		return out.WriteText(tok.Null)
	}
	if tok.Prefix != "" {
		if err := out.WriteText(tok.Prefix); err != nil {
			return err
		}
	}
	if err := fact.Render(out); err != nil {
		return err
	}
	if tok.Suffix != "" {
		return out.WriteText(tok.Suffix)
	}
	return nil
}

func (r *Renderer) writeComputation(ctx context.Context, out Element, tok Token) error {
	if r.Computations == nil {
		return fmt.Errorf("no computations available for %q", tok.Name)
	}
	period, err := r.period(tok.Period)
	if err != nil {
		return err
	}
	res, err := r.Computations.Evaluate(ctx, tok.Name, period)
	if err != nil {
		return err
	}
	return out.WriteFact(taxonomy.Fact{
		Name: res.Definition().Concept,
		Datum: domain.Datum{
			ID:      tok.Name,
			Kind:    domain.DatumMoney,
			Value:   res.Value(),
			Context: r.Context.WithPeriod(period),
		},
	})
}

// period resolves key as a period name, or as a configuration key whose
// value is a period name. An empty key is the current period.
func (r *Renderer) period(key string) (domain.Period, error) {
	if len(r.Periods) == 0 {
		return domain.Period{}, fmt.Errorf("%w: no periods configured", ErrUnknownPeriod)
	}
	if key == "" {
		return r.Periods[0], nil
	}
	name := key
	if r.Lookup != nil {
		if v, ok := r.Lookup.Get(key).(string); ok && v != "" {
			name = v
		}
	}
	for _, p := range r.Periods {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, key)
}
