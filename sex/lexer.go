package sex

import (
	"strings"

	"github.com/alecthomas/participle/lexer"
)

// tokKind classifies a lexed token for the hand-written recursive descent
// parser in parser.go. The actual character-class recognition is delegated
// to participle's regexp-driven lexer below; this package only reshapes its
// output into the small token vocabulary the grammar needs.
type tokKind int

// Constants enumerating the tokKind values a token can carry.
const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind  tokKind
	value string
	pos   int
}

// sexLexerDef describes the SEX token grammar as a single regexp with named
// capture groups: each named group becomes a token type; Whitespace tokens
// are matched here and discarded by lex.
var sexLexerDef = lexer.Must(lexer.Regexp(
	`(?P<Whitespace>\s+)` +
		`|(?P<Number>[0-9]+\.[0-9]+(?:[eE][-+]?[0-9]+)?|[0-9]+)` +
		`|(?P<String>'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*")` +
		`|(?P<Ident>[A-Za-z_][A-Za-z0-9_]*)` +
		`|(?P<Op>=>|\|\||&&|!~|!=|<=|>=|[=<>!~&+\-*/%#\[\]()?:])`,
))

// lex tokenizes src using sexLexerDef, dropping whitespace and translating
// participle's lexer.Token stream into the flat []token the parser expects.
// A character that matches none of the named groups surfaces as a
// *CompileError of kind UnexpectedToken, since participle's regexp lexer
// itself only reports an elementType of -1 there rather than an error.
func lex(src string) ([]token, error) {
	lx, err := sexLexerDef.Lex(strings.NewReader(src))
	if err != nil {
		return nil, &CompileError{Kind: UnexpectedToken, Pos: 0, Message: err.Error()}
	}
	symbols := sexLexerDef.Symbols()
	names := make(map[rune]string, len(symbols))
	for name, r := range symbols {
		names[r] = name
	}

	var toks []token
	for {
		tk, err := lx.Next()
		if err != nil {
			return nil, &CompileError{Kind: UnexpectedToken, Pos: 0, Message: err.Error()}
		}
		if tk.EOF() {
			toks = append(toks, token{kind: tokEOF, pos: tk.Pos.Offset})
			return toks, nil
		}
		name := names[tk.Type]
		switch name {
		case "Whitespace":
			continue
		case "Number":
			toks = append(toks, token{kind: tokNumber, value: tk.Value, pos: tk.Pos.Offset})
		case "String":
			toks = append(toks, token{kind: tokString, value: tk.Value, pos: tk.Pos.Offset})
		case "Ident":
			toks = append(toks, token{kind: tokIdent, value: tk.Value, pos: tk.Pos.Offset})
		case "Op":
			toks = append(toks, token{kind: tokOp, value: tk.Value, pos: tk.Pos.Offset})
		default:
			return nil, &CompileError{Kind: UnexpectedToken, Pos: tk.Pos.Offset, Message: "unrecognized character " + tk.Value}
		}
	}
}

// unquote strips the surrounding quote characters from a lexed String token
// and resolves backslash escapes.
func unquote(s string) (string, error) {
	if len(s) < 2 {
		return "", &CompileError{Kind: UnterminatedString, Message: "empty string token"}
	}
	quote := s[0]
	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case quote:
				b.WriteByte(quote)
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}
