package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Error is returned for predicates or sort expressions that cannot be compiled.
type Error struct {
	Param string
	Input string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("malformed %s parameter %q: %v", e.Param, e.Input, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Predicate is a compiled set of where expressions. A document matches when
// every expression evaluates to true. The zero value matches everything.
type Predicate struct {
	programs []*vm.Program
}

// CompilePredicate compiles where expressions. Blank expressions are ignored.
func CompilePredicate(where ...string) (*Predicate, error) {
	p := &Predicate{}
	for _, w := range where {
		if strings.TrimSpace(w) == "" {
			continue
		}
		program, err := expr.Compile(Translate(w), expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return nil, &Error{Param: "where", Input: w, Err: err}
		}
		p.programs = append(p.programs, program)
	}
	return p, nil
}

// Empty reports whether the predicate has no expressions.
func (p *Predicate) Empty() bool {
	return p == nil || len(p.programs) == 0
}

// Match evaluates the predicate against a document. An evaluation error, such
// as reading a field of a missing object, counts as no match.
func (p *Predicate) Match(doc map[string]any) bool {
	if p == nil {
		return true
	}
	for _, program := range p.programs {
		out, err := expr.Run(program, doc)
		if err != nil {
			return false
		}
		if ok, isBool := out.(bool); !isBool || !ok {
			return false
		}
	}
	return true
}

var (
	isNotDefinedPattern = regexp.MustCompile(`(?i)\s+is\s+not\s+defined\b`)
	isDefinedPattern    = regexp.MustCompile(`(?i)\s+is\s+defined\b`)
)

// Translate rewrites a platform predicate into expr-lang syntax:
// "=" becomes "==", "<>" becomes "!=", "in (a, b)" becomes "in [a, b]" and
// "is [not] defined" becomes a nil comparison. String literals are copied
// verbatim.
func Translate(where string) string {
	s := isNotDefinedPattern.ReplaceAllString(where, " == nil")
	s = isDefinedPattern.ReplaceAllString(s, " != nil")

	var b strings.Builder
	b.Grow(len(s) + 8)
	var parens []bool // true when the paren opened an "in" list

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(s) && s[j] != c {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(s) {
				j = len(s) - 1
			}
			b.WriteString(s[i : j+1])
			i = j
		case c == '<' && i+1 < len(s) && s[i+1] == '>':
			b.WriteString("!=")
			i++
		case c == '=':
			prevOp := i > 0 && strings.IndexByte("=!<>", s[i-1]) >= 0
			nextEq := i+1 < len(s) && s[i+1] == '='
			if prevOp || nextEq {
				b.WriteByte(c)
				if nextEq {
					b.WriteByte('=')
					i++
				}
			} else {
				b.WriteString("==")
			}
		case c == '(':
			inList := endsWithWord(b.String(), "in")
			parens = append(parens, inList)
			if inList {
				b.WriteByte('[')
			} else {
				b.WriteByte('(')
			}
		case c == ')':
			inList := false
			if n := len(parens); n > 0 {
				inList = parens[n-1]
				parens = parens[:n-1]
			}
			if inList {
				b.WriteByte(']')
			} else {
				b.WriteByte(')')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func endsWithWord(s, word string) bool {
	s = strings.TrimRight(s, " \t\n")
	if !strings.HasSuffix(strings.ToLower(s), word) {
		return false
	}
	rest := s[:len(s)-len(word)]
	if rest == "" {
		return true
	}
	last := rest[len(rest)-1]
	return !(last == '_' || last == '.' || last >= '0' && last <= '9' || last >= 'a' && last <= 'z' || last >= 'A' && last <= 'Z')
}
