// Package notes parses and renders the inline markup used in note bodies.
//
// Directives are introduced by a tilde:
//
//	~[metadata:NAME|prefix=P|suffix=S|null=N]
//	~[computation:NAME|period=KEY]
//	~{string:CONTEXTREF:NAME} tagged text ~}
//	~~ for a literal tilde
package notes

type TokenKind int

const (
	TokenText TokenKind = iota
	TokenMetadata
	TokenComputation
	TokenTagOpen
	TokenTagClose
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenMetadata:
		return "metadata"
	case TokenComputation:
		return "computation"
	case TokenTagOpen:
		return "tag-open"
	case TokenTagClose:
		return "tag-close"
	default:
		return "unknown"
	}
}

// Token is one element of a parsed note body. Which fields are set depends
// on Kind.
type Token struct {
	Kind TokenKind
	// Pos is the byte offset of the token in the source text
	Pos int

	Text string

	Name   string
	Prefix string
	Suffix string
	Null   string
	Period string

	TagKind    string
	ContextRef *string
}

func Text(s string) Token { return Token{Kind: TokenText, Text: s} }

func Metadata(name, prefix, suffix, null string) Token {
	return Token{Kind: TokenMetadata, Name: name, Prefix: prefix, Suffix: suffix, Null: null}
}

func Computation(name, period string) Token {
	return Token{Kind: TokenComputation, Name: name, Period: period}
}

func TagOpen(kind string, contextRef *string, name string) Token {
	return Token{Kind: TokenTagOpen, TagKind: kind, ContextRef: contextRef, Name: name}
}

func TagClose() Token { return Token{Kind: TokenTagClose} }
