package annotations

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/dendrite/internal/errors"
)

// annotationExpr is the participle AST for everything after the dendrite::
// prefix: the annotation keyword followed by dash parameters.
type annotationExpr struct {
	Kind  string      `parser:"@Ident"`
	Items []paramExpr `parser:"@@*"`
}

// paramExpr is a single -Name or -Name=value item. Values lex into several
// tokens (idents, chunks like ".cache" or ":30s", quoted strings) that are
// re-joined after parsing.
type paramExpr struct {
	Name  string   `parser:"Dash @Ident"`
	Parts []string `parser:"( Equals ( @String | @Ident | @Chunk )+ )?"`
}

func (p paramExpr) value() string {
	value := strings.Join(p.Parts, "")
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return value
}

func (p paramExpr) hasValue() bool {
	return len(p.Parts) > 0
}

// Parser parses //dendrite:: comment annotations
type Parser struct {
	parser *participle.Parser[annotationExpr]
}

// NewParser builds the annotation parser. The grammar is fixed, so this
// never fails at runtime; construction panics on a broken grammar, which a
// unit test catches.
func NewParser() *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Equals", Pattern: `=`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Chunk", Pattern: `[^\s=\-]+`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	return &Parser{
		parser: participle.MustBuild[annotationExpr](
			participle.Lexer(lex),
			participle.Elide("Whitespace"),
		),
	}
}

// IsAnnotation reports whether a comment line looks like a dendrite
// annotation at all, so callers can skip ordinary comments cheaply.
func IsAnnotation(comment string) bool {
	content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(comment), "//"))
	return strings.HasPrefix(content, Prefix)
}

// Parse parses and validates a single annotation comment line.
func (p *Parser) Parse(comment string, loc errors.SourceLocation) (*Parsed, error) {
	trimmed := strings.TrimSpace(comment)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, errors.New(errors.SyntaxErrorCode, "annotation must be a // comment").WithLocation(loc)
	}
	content := strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
	if !strings.HasPrefix(content, Prefix) {
		return nil, errors.Newf(errors.SyntaxErrorCode, "annotation must start with //%s", Prefix).WithLocation(loc)
	}
	content = strings.TrimPrefix(content, Prefix)
	if strings.TrimSpace(content) == "" {
		return nil, errors.New(errors.SyntaxErrorCode, "empty annotation").
			WithLocation(loc).
			WithSuggestion("write //dendrite::subscriber or //dendrite::subscribe")
	}

	expr, err := p.parser.ParseString(loc.File, content)
	if err != nil {
		return nil, errors.Wrapf(errors.SyntaxErrorCode, err, "malformed annotation %q", trimmed).WithLocation(loc)
	}

	kind, err := ParseKind(expr.Kind)
	if err != nil {
		return nil, errors.Newf(errors.SyntaxErrorCode, "%v", err).
			WithLocation(loc).
			WithSuggestion("supported annotations: subscriber, subscribe")
	}

	parsed := &Parsed{
		Kind:     kind,
		Location: loc,
		Raw:      trimmed,
	}

	switch kind {
	case SubscriberKind:
		if len(expr.Items) > 0 {
			return nil, errors.Newf(errors.ValidationErrorCode,
				"subscriber annotations take no parameters, got -%s", expr.Items[0].Name).WithLocation(loc)
		}
	case SubscribeKind:
		if err := p.applySubscribeItems(parsed, expr.Items); err != nil {
			return nil, err
		}
	}

	return parsed, nil
}

// applySubscribeItems validates subscribe parameters against the schema and
// fills in the parsed annotation.
func (p *Parser) applySubscribeItems(parsed *Parsed, items []paramExpr) error {
	loc := parsed.Location
	seenAttrs := make(map[string]bool)

	for _, item := range items {
		switch item.Name {
		case "Key", "Type":
			if !item.hasValue() || item.value() == "" {
				return errors.Newf(errors.ValidationErrorCode, "-%s requires a value", item.Name).
					WithLocation(loc).
					WithSuggestion("write -" + item.Name + "=<value>")
			}
			if item.Name == "Key" {
				if parsed.Key != "" {
					return errors.New(errors.ValidationErrorCode, "-Key given twice").WithLocation(loc)
				}
				parsed.Key = item.value()
			} else {
				if parsed.Type != "" {
					return errors.New(errors.ValidationErrorCode, "-Type given twice").WithLocation(loc)
				}
				parsed.Type = item.value()
			}

		case "Nullable":
			if item.hasValue() {
				return errors.New(errors.ValidationErrorCode, "-Nullable is a flag and takes no value").WithLocation(loc)
			}
			parsed.Nullable = true

		case "Attr":
			if !item.hasValue() {
				return errors.New(errors.ValidationErrorCode, "-Attr requires a value").
					WithLocation(loc).
					WithSuggestion("write -Attr=<name>:<value>")
			}
			name, value, found := strings.Cut(item.value(), ":")
			if !found || name == "" {
				return errors.Newf(errors.ValidationErrorCode, "attribute %q must be <name>:<value>", item.value()).WithLocation(loc)
			}
			if seenAttrs[name] {
				return errors.Newf(errors.ValidationErrorCode, "attribute %q given twice", name).WithLocation(loc)
			}
			seenAttrs[name] = true
			parsed.Attributes = append(parsed.Attributes, Attribute{Name: name, Value: value})

		default:
			return errors.Newf(errors.ValidationErrorCode, "unknown parameter -%s for subscribe annotation", item.Name).
				WithLocation(loc).
				WithSuggestion("supported parameters: -Key=<key> -Type=<type> -Nullable -Attr=<name>:<value>")
		}
	}

	return nil
}
