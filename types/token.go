package types

import "fmt"

type TokenKind int

const (
	EOF TokenKind = iota

	INT
	STR
	CHAR
	BOOL
	SYMBOL
	OPERATOR
	IDENT
	KEYWORD
	WHITESPACE
	EOL
	INDENT
	DEDENT
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		EOF:        "EOF",
		INT:        "INT",
		STR:        "STR",
		CHAR:       "CHAR",
		BOOL:       "BOOL",
		SYMBOL:     "SYMBOL",
		OPERATOR:   "OPERATOR",
		IDENT:      "IDENT",
		KEYWORD:    "KEYWORD",
		WHITESPACE: "WHITESPACE",
		EOL:        "EOL",
		INDENT:     "INDENT",
		DEDENT:     "DEDENT",
	}
	if s, ok := data[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// Keyword is resolved once by the lexer so the parser never switches on raw text.
type Keyword int

const (
	NoKeyword Keyword = iota
	MUT
	FUN
	FUNCTION
	STRUCT
	MATCH
	IF
	ELIF
	ELSE
	UNLESS
	NEW
	EXTERN
	RETURN
	INTERFACE
	IMPLEMENT
	IMPORT
	EXPOSE
	AS
	WHILE
)

var keywordNames = [...]string{
	NoKeyword: "",
	MUT:       "mut",
	FUN:       "fun",
	FUNCTION:  "function",
	STRUCT:    "struct",
	MATCH:     "match",
	IF:        "if",
	ELIF:      "elif",
	ELSE:      "else",
	UNLESS:    "unless",
	NEW:       "new",
	EXTERN:    "extern",
	RETURN:    "return",
	INTERFACE: "interface",
	IMPLEMENT: "implement",
	IMPORT:    "import",
	EXPOSE:    "expose",
	AS:        "as",
	WHILE:     "while",
}

func (k Keyword) String() string {
	if k >= 0 && int(k) < len(keywordNames) {
		return keywordNames[k]
	}
	return fmt.Sprintf("Keyword(%d)", int(k))
}

// Keywords lists every keyword spelling in declaration order.
func Keywords() []string {
	return append([]string(nil), keywordNames[1:]...)
}

// LookupKeyword maps a spelling to its keyword, or NoKeyword.
func LookupKeyword(s string) Keyword {
	for i, name := range keywordNames {
		if i > 0 && name == s {
			return Keyword(i)
		}
	}
	return NoKeyword
}

type Operator int

const (
	NoOperator Operator = iota
	Pow
	Mul
	Div
	Mod
	Add
	Sub
	Equal
	NEqual
	Lt
	Gt
	LtEqual
	GtEqual
	XOR
	Concat
	PipeLeft
	PipeRight
	Arrow
	Ellipsis
)

var operatorNames = [...]string{
	NoOperator: "",
	Pow:        "^^",
	Mul:        "*",
	Div:        "/",
	Mod:        "%",
	Add:        "+",
	Sub:        "-",
	Equal:      "==",
	NEqual:     "!=",
	Lt:         "<",
	Gt:         ">",
	LtEqual:    "<=",
	GtEqual:    ">=",
	XOR:        "^",
	Concat:     "++",
	PipeLeft:   "<|",
	PipeRight:  "|>",
	Arrow:      "->",
	Ellipsis:   "...",
}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// operatorSpellings is ordered longest first so a prefix never shadows a longer operator.
var operatorSpellings = []struct {
	text string
	op   Operator
}{
	{"...", Ellipsis},
	{"^^", Pow},
	{"==", Equal},
	{"!=", NEqual},
	{"~=", NEqual},
	{"<=", LtEqual},
	{">=", GtEqual},
	{"++", Concat},
	{"<|", PipeLeft},
	{"|>", PipeRight},
	{"->", Arrow},
	{"*", Mul},
	{"/", Div},
	{"%", Mod},
	{"+", Add},
	{"-", Sub},
	{"<", Lt},
	{">", Gt},
	{"^", XOR},
}

// OperatorSpellings returns every operator spelling, longest first.
func OperatorSpellings() []string {
	out := make([]string, len(operatorSpellings))
	for i, s := range operatorSpellings {
		out[i] = s.text
	}
	return out
}

func LookupOperator(s string) Operator {
	for _, spelling := range operatorSpellings {
		if spelling.text == s {
			return spelling.op
		}
	}
	return NoOperator
}

// Precedence returns the binding level of a binary operator; lower binds tighter.
// ok is false for operators that never appear between two operands.
//
//	0: ^^
//	1: * / %
//	2: + -
//	3: == !=
//	4: < > <= >= ^
//	5: ++ <| |>
func (o Operator) Precedence() (level int, ok bool) {
	switch o {
	case Pow:
		return 0, true
	case Mul, Div, Mod:
		return 1, true
	case Add, Sub:
		return 2, true
	case Equal, NEqual:
		return 3, true
	case Lt, Gt, LtEqual, GtEqual, XOR:
		return 4, true
	case Concat, PipeLeft, PipeRight:
		return 5, true
	}
	return 0, false
}

// IsBinary reports whether o can join two operands.
func (o Operator) IsBinary() bool {
	_, ok := o.Precedence()
	return ok
}

type Token struct {
	Kind     TokenKind
	Location Span
	Content  string

	// Keyword is set when Kind is KEYWORD, Operator when Kind is OPERATOR.
	Keyword  Keyword
	Operator Operator
}

// Is reports whether t is the symbol s.
func (t Token) Is(s string) bool {
	return t.Kind == SYMBOL && t.Content == s
}

func (t Token) IsKeyword(k Keyword) bool {
	return t.Kind == KEYWORD && t.Keyword == k
}

func (t Token) IsOperator(o Operator) bool {
	return t.Kind == OPERATOR && t.Operator == o
}

func (t Token) Pos() Position {
	return t.Location.From
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Kind, t.Content, t.Location.From)
}
