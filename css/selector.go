// Package css parses CSS selectors and matches them against the dom tree.
package css

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chrisuehlinger/domports/dom"
)

// CSSSelector represents a parsed CSS selector.
type CSSSelector struct {
	// A selector is a list of complex selectors separated by commas
	ComplexSelectors []*ComplexSelector
}

// ComplexSelector is a chain of compound selectors separated by combinators.
type ComplexSelector struct {
	Compounds []*CompoundSelector
}

// CompoundSelector is a sequence of simple selectors.
type CompoundSelector struct {
	TypeSelector      *TypeSelector
	IDSelectors       []string
	ClassSelectors    []string
	AttributeMatchers []*AttributeMatcher
	PseudoClasses     []*PseudoClassSelector
	PseudoElement     string
	Combinator        CombinatorType // Combinator following this compound selector
}

// CombinatorType represents the type of combinator.
type CombinatorType int

const (
	CombinatorNone              CombinatorType = iota
	CombinatorDescendant                       // (whitespace)
	CombinatorChild                            // >
	CombinatorNextSibling                      // +
	CombinatorSubsequentSibling                // ~
)

// TypeSelector represents a type (tag) selector.
type TypeSelector struct {
	Name string // "*" for universal, or lowercase tag name
}

// AttributeMatcher represents an attribute selector.
type AttributeMatcher struct {
	Name            string
	Operator        AttributeOperator
	Value           string
	CaseInsensitive bool
}

// AttributeOperator represents the operator in an attribute selector.
type AttributeOperator int

const (
	AttrExists    AttributeOperator = iota // [attr]
	AttrEquals                             // [attr=value]
	AttrIncludes                           // [attr~=value]
	AttrDashMatch                          // [attr|=value]
	AttrPrefix                             // [attr^=value]
	AttrSuffix                             // [attr$=value]
	AttrSubstring                          // [attr*=value]
)

// PseudoClassSelector represents a pseudo-class.
type PseudoClassSelector struct {
	Name     string
	Argument string       // raw argument of functional pseudo-classes
	Selector *CSSSelector // argument of :not(), :is(), :where(), :has()

	// An+B coefficients for the :nth-* family
	A, B int
}

// pseudoClassArity lists the supported pseudo-classes and whether they take
// an argument.
var pseudoClassArity = map[string]bool{
	"root": false, "empty": false, "scope": false,
	"first-child": false, "last-child": false, "only-child": false,
	"first-of-type": false, "last-of-type": false, "only-of-type": false,
	"nth-child": true, "nth-last-child": true, "nth-of-type": true, "nth-last-of-type": true,
	"not": true, "is": true, "where": true, "has": true,
	"checked": false, "disabled": false, "enabled": false,
	"required": false, "optional": false, "read-only": false, "read-write": false,
	"link": false, "any-link": false, "visited": false,
	"focus": false, "focus-within": false, "focus-visible": false,
	"hover": false, "active": false, "target": false,
	"lang": true,
}

// SelectorParser parses CSS selectors directly from the source text.
type SelectorParser struct {
	input string
	pos   int
}

// ParseSelector parses a selector list. Malformed input yields a
// SyntaxError *dom.DOMError.
func ParseSelector(input string) (*CSSSelector, error) {
	p := &SelectorParser{input: input}
	sel, err := p.parseSelector(false)
	if err != nil {
		return nil, dom.ErrSyntax(fmt.Sprintf("'%s' is not a valid selector: %s.", input, err.Error()))
	}
	return sel, nil
}

func (p *SelectorParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *SelectorParser) current() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *SelectorParser) peek(offset int) byte {
	if p.pos+offset >= len(p.input) {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *SelectorParser) skipWhitespace() bool {
	start := p.pos
	for !p.eof() {
		switch p.current() {
		case ' ', '\t', '\n', '\r', '\f':
			p.pos++
			continue
		}
		break
	}
	return p.pos > start
}

func (p *SelectorParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%s at offset %d", fmt.Sprintf(format, args...), p.pos)
}

// parseSelector parses a selector list. When nested, parsing stops at the
// closing parenthesis of the enclosing pseudo-class.
func (p *SelectorParser) parseSelector(nested bool) (*CSSSelector, error) {
	selector := &CSSSelector{}
	p.skipWhitespace()

	for {
		complex, err := p.parseComplexSelector()
		if err != nil {
			return nil, err
		}
		selector.ComplexSelectors = append(selector.ComplexSelectors, complex)

		p.skipWhitespace()
		switch {
		case p.current() == ',':
			p.pos++
			p.skipWhitespace()
			continue
		case p.eof() && !nested:
			return selector, nil
		case p.current() == ')' && nested:
			return selector, nil
		}
		return nil, p.errorf("unexpected %q", p.current())
	}
}

// parseComplexSelector parses compound selectors joined by combinators.
func (p *SelectorParser) parseComplexSelector() (*ComplexSelector, error) {
	complex := &ComplexSelector{}

	for {
		compound, err := p.parseCompoundSelector()
		if err != nil {
			return nil, err
		}
		complex.Compounds = append(complex.Compounds, compound)

		hadWhitespace := p.skipWhitespace()
		switch c := p.current(); {
		case c == '>':
			compound.Combinator = CombinatorChild
		case c == '+':
			compound.Combinator = CombinatorNextSibling
		case c == '~':
			compound.Combinator = CombinatorSubsequentSibling
		case p.eof() || c == ',' || c == ')':
			return complex, nil
		case hadWhitespace:
			compound.Combinator = CombinatorDescendant
		default:
			return nil, p.errorf("unexpected %q", c)
		}
		if compound.Combinator != CombinatorDescendant {
			p.pos++
			p.skipWhitespace()
		}
	}
}

// parseCompoundSelector parses a sequence of simple selectors.
func (p *SelectorParser) parseCompoundSelector() (*CompoundSelector, error) {
	compound := &CompoundSelector{}
	hasContent := false

	if p.current() == '*' {
		p.pos++
		compound.TypeSelector = &TypeSelector{Name: "*"}
		hasContent = true
	} else if p.startsIdentifier() {
		name, err := p.consumeIdent()
		if err != nil {
			return nil, err
		}
		compound.TypeSelector = &TypeSelector{Name: strings.ToLower(name)}
		hasContent = true
	}

	for !p.eof() {
		if compound.PseudoElement != "" {
			// Nothing may follow a pseudo-element.
			break
		}
		switch p.current() {
		case '#':
			p.pos++
			name, err := p.consumeName()
			if err != nil {
				return nil, err
			}
			compound.IDSelectors = append(compound.IDSelectors, name)
		case '.':
			p.pos++
			name, err := p.consumeIdent()
			if err != nil {
				return nil, err
			}
			compound.ClassSelectors = append(compound.ClassSelectors, name)
		case '[':
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return nil, err
			}
			compound.AttributeMatchers = append(compound.AttributeMatchers, attr)
		case ':':
			p.pos++
			if p.current() == ':' {
				p.pos++
				name, err := p.consumeIdent()
				if err != nil {
					return nil, err
				}
				compound.PseudoElement = strings.ToLower(name)
				break
			}
			pc, err := p.parsePseudoClass()
			if err != nil {
				return nil, err
			}
			compound.PseudoClasses = append(compound.PseudoClasses, pc)
		default:
			if !hasContent {
				return nil, p.errorf("expected selector, found %q", p.current())
			}
			return compound, nil
		}
		hasContent = true
	}

	if !hasContent {
		return nil, p.errorf("expected selector")
	}
	return compound, nil
}

func (p *SelectorParser) parseAttributeSelector() (*AttributeMatcher, error) {
	p.pos++ // [
	p.skipWhitespace()

	name, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	attr := &AttributeMatcher{Name: strings.ToLower(name)}
	p.skipWhitespace()

	if p.current() == ']' {
		p.pos++
		attr.Operator = AttrExists
		return attr, nil
	}

	switch p.current() {
	case '=':
		attr.Operator = AttrEquals
	case '~':
		attr.Operator = AttrIncludes
	case '|':
		attr.Operator = AttrDashMatch
	case '^':
		attr.Operator = AttrPrefix
	case '$':
		attr.Operator = AttrSuffix
	case '*':
		attr.Operator = AttrSubstring
	default:
		return nil, p.errorf("invalid attribute operator %q", p.current())
	}
	p.pos++
	if attr.Operator != AttrEquals {
		if p.current() != '=' {
			return nil, p.errorf("invalid attribute operator")
		}
		p.pos++
	}
	p.skipWhitespace()

	switch p.current() {
	case '"', '\'':
		attr.Value, err = p.consumeString()
	default:
		attr.Value, err = p.consumeIdent()
	}
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	switch p.current() {
	case 'i', 'I':
		attr.CaseInsensitive = true
		p.pos++
		p.skipWhitespace()
	case 's', 'S':
		p.pos++
		p.skipWhitespace()
	}

	if p.current() != ']' {
		return nil, p.errorf("unterminated attribute selector")
	}
	p.pos++
	return attr, nil
}

// parsePseudoClass parses a pseudo-class after its colon.
func (p *SelectorParser) parsePseudoClass() (*PseudoClassSelector, error) {
	name, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	pc := &PseudoClassSelector{Name: strings.ToLower(name)}

	takesArg, known := pseudoClassArity[pc.Name]
	if !known {
		return nil, p.errorf("unknown pseudo-class :%s", pc.Name)
	}
	hasParen := p.current() == '('
	if takesArg != hasParen {
		return nil, p.errorf("malformed pseudo-class :%s", pc.Name)
	}
	if !hasParen {
		return pc, nil
	}
	p.pos++ // (

	switch pc.Name {
	case "not", "is", "where", "has":
		sel, err := p.parseSelector(true)
		if err != nil {
			return nil, err
		}
		pc.Selector = sel
	default:
		start := p.pos
		for !p.eof() && p.current() != ')' {
			p.pos++
		}
		pc.Argument = strings.TrimSpace(p.input[start:p.pos])
		if strings.HasPrefix(pc.Name, "nth-") {
			a, b, ok := parseAnPlusB(pc.Argument)
			if !ok {
				return nil, p.errorf("invalid An+B expression %q", pc.Argument)
			}
			pc.A, pc.B = a, b
		}
	}

	if p.current() != ')' {
		return nil, p.errorf("unterminated :%s()", pc.Name)
	}
	p.pos++
	return pc, nil
}

// parseAnPlusB parses an An+B expression, including the odd and even
// keywords.
func parseAnPlusB(s string) (a, b int, ok bool) {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch s {
	case "":
		return 0, 0, false
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	}

	if n, err := strconv.Atoi(s); err == nil {
		return 0, n, true
	}

	nIdx := strings.IndexByte(s, 'n')
	if nIdx == -1 {
		return 0, 0, false
	}

	switch aStr := s[:nIdx]; aStr {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		n, err := strconv.Atoi(aStr)
		if err != nil {
			return 0, 0, false
		}
		a = n
	}

	if bStr := s[nIdx+1:]; bStr != "" {
		if bStr[0] != '+' && bStr[0] != '-' {
			return 0, 0, false
		}
		n, err := strconv.Atoi(bStr)
		if err != nil {
			return 0, 0, false
		}
		b = n
	}
	return a, b, true
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '-'
}

// startsIdentifier reports whether an identifier begins at the current
// position.
func (p *SelectorParser) startsIdentifier() bool {
	c := p.current()
	switch {
	case isNameStart(c) || c == '\\':
		return true
	case c == '-':
		next := p.peek(1)
		return isNameStart(next) || next == '-' || next == '\\'
	}
	return false
}

func (p *SelectorParser) consumeIdent() (string, error) {
	if !p.startsIdentifier() {
		return "", p.errorf("expected identifier")
	}
	return p.consumeName()
}

// consumeName consumes a run of name characters, decoding escapes.
func (p *SelectorParser) consumeName() (string, error) {
	var sb strings.Builder
	for !p.eof() {
		c := p.current()
		switch {
		case c == '\\':
			r, err := p.consumeEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		case isNameChar(c):
			sb.WriteByte(c)
			p.pos++
		default:
			goto done
		}
	}
done:
	if sb.Len() == 0 {
		return "", p.errorf("expected name")
	}
	return sb.String(), nil
}

// consumeEscape consumes a backslash escape: up to six hex digits and an
// optional whitespace terminator, or a single literal character.
func (p *SelectorParser) consumeEscape() (rune, error) {
	p.pos++ // backslash
	if p.eof() {
		return 0, p.errorf("dangling escape")
	}
	start := p.pos
	for p.pos-start < 6 && !p.eof() && isHex(p.current()) {
		p.pos++
	}
	if p.pos > start {
		n, _ := strconv.ParseUint(p.input[start:p.pos], 16, 32)
		switch p.current() {
		case ' ', '\t', '\n':
			p.pos++
		}
		if n == 0 || n > utf8.MaxRune || (n >= 0xD800 && n <= 0xDFFF) {
			return utf8.RuneError, nil
		}
		return rune(n), nil
	}
	r, size := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += size
	return r, nil
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// consumeString consumes a quoted string.
func (p *SelectorParser) consumeString() (string, error) {
	quote := p.current()
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		c := p.current()
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\n':
			return "", p.errorf("newline in string")
		case c == '\\':
			if p.peek(1) == '\n' {
				p.pos += 2
				continue
			}
			r, err := p.consumeEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}
