package notes

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

var ErrParse = errors.New("note markup error")

const (
	introducer = '~'
	dirOpen    = '['
	dirClose   = ']'
	tagOpen    = '{'
	tagClose   = '}'
)

type Parser struct {
	text     string
	consumed bool
}

// Parse prepares text for tokenising. Nothing is read until Tokens is
// iterated.
func Parse(text string) *Parser {
	return &Parser{text: text}
}

// Tokens yields the tokens of the text in order. Iteration stops at the
// first error. The sequence can be iterated once; later iterations yield
// nothing.
func (p *Parser) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		if p.consumed {
			return
		}
		p.consumed = true
		p.scan(yield)
	}
}

func (p *Parser) scan(yield func(Token, error) bool) {
	var (
		text      strings.Builder
		textStart int
		depth     int
		pos       int
	)
	flush := func() bool {
		if text.Len() == 0 {
			return true
		}
		tok := Text(text.String())
		tok.Pos = textStart
		text.Reset()
		return yield(tok, nil)
	}
	fail := func(at int, format string, args ...any) {
		yield(Token{}, fmt.Errorf("%w at offset %d: %s", ErrParse, at, fmt.Sprintf(format, args...)))
	}

	for pos < len(p.text) {
		c := p.text[pos]
		if c != introducer {
			if text.Len() == 0 {
				textStart = pos
			}
			text.WriteByte(c)
			pos++
			continue
		}
		if pos+1 >= len(p.text) {
			fail(pos, "dangling %q", introducer)
			return
		}

		start := pos
		switch p.text[pos+1] {
		case introducer:
			if text.Len() == 0 {
				textStart = pos
			}
			text.WriteByte(introducer)
			pos += 2
			continue
		case dirOpen:
			end := strings.IndexByte(p.text[pos+2:], dirClose)
			if end < 0 {
				fail(start, "unterminated directive")
				return
			}
			body := p.text[pos+2 : pos+2+end]
			tok, err := parseDirective(body)
			if err != nil {
				fail(start, "%v", err)
				return
			}
			tok.Pos = start
			if !flush() || !yield(tok, nil) {
				return
			}
			pos += 2 + end + 1
		case tagOpen:
			end := strings.IndexByte(p.text[pos+2:], tagClose)
			if end < 0 {
				fail(start, "unterminated tag")
				return
			}
			tok, err := parseTag(p.text[pos+2 : pos+2+end])
			if err != nil {
				fail(start, "%v", err)
				return
			}
			tok.Pos = start
			depth++
			if !flush() || !yield(tok, nil) {
				return
			}
			pos += 2 + end + 1
		case tagClose:
			if depth == 0 {
				fail(start, "unmatched tag close")
				return
			}
			depth--
			tok := TagClose()
			tok.Pos = start
			if !flush() || !yield(tok, nil) {
				return
			}
			pos += 2
		default:
			fail(start, "unknown directive %q", p.text[pos:pos+2])
			return
		}
	}

	if !flush() {
		return
	}
	if depth > 0 {
		fail(len(p.text), "%d unclosed tag(s)", depth)
	}
}

func parseDirective(body string) (Token, error) {
	parts := strings.Split(body, "|")
	kind, name, ok := strings.Cut(parts[0], ":")
	if !ok {
		return Token{}, fmt.Errorf("directive %q has no kind", body)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Token{}, fmt.Errorf("%s directive has an empty name", kind)
	}

	opts := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return Token{}, fmt.Errorf("option %q of %s:%s is not key=value", part, kind, name)
		}
		opts[strings.TrimSpace(k)] = v
	}

	var allowed []string
	var tok Token
	switch strings.TrimSpace(kind) {
	case "metadata":
		allowed = []string{"prefix", "suffix", "null"}
		tok = Metadata(name, opts["prefix"], opts["suffix"], opts["null"])
	case "computation":
		allowed = []string{"period"}
		tok = Computation(name, opts["period"])
	default:
		return Token{}, fmt.Errorf("unknown directive kind %q", kind)
	}
	for k := range opts {
		if !slices.Contains(allowed, k) {
			return Token{}, fmt.Errorf("unknown option %q for %s:%s", k, kind, name)
		}
	}
	return tok, nil
}

func parseTag(body string) (Token, error) {
	parts := strings.SplitN(body, ":", 3)
	if len(parts) != 3 {
		return Token{}, fmt.Errorf("tag %q must be KIND:CONTEXTREF:NAME", body)
	}
	kind, ref, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if kind == "" {
		return Token{}, fmt.Errorf("tag %q has an empty kind", body)
	}
	if name == "" {
		return Token{}, fmt.Errorf("tag %q has an empty name", body)
	}
	var contextRef *string
	if ref != "" {
		contextRef = &ref
	}
	return TagOpen(kind, contextRef, name), nil
}
