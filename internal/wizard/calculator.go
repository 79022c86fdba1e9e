package wizard

import (
	"strconv"
	"strings"

	"github.com/pavelanni/attendance/internal/model"
)

const (
	plusToken   = " + "
	equalsToken = " = "
)

// tokenKind classifies a fragment of a calculator expression.
type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenPlus
	tokenEquals
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits an addition-only expression into number and operator
// tokens. Whitespace is not significant; anything between operators is a
// number fragment, valid or not.
func tokenize(expr string) []token {
	var tokens []token
	var buf strings.Builder
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			tokens = append(tokens, token{kind: tokenNumber, text: s})
		}
		buf.Reset()
	}
	for _, r := range expr {
		switch r {
		case '+':
			flush()
			tokens = append(tokens, token{kind: tokenPlus, text: "+"})
		case '=':
			flush()
			tokens = append(tokens, token{kind: tokenEquals, text: "="})
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// parseAddend converts a number fragment to a non-negative integer.
// Anything unparseable contributes zero.
func parseAddend(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// addends returns the number fragments that precede the first equals sign.
func addends(tokens []token) []string {
	var out []string
	for _, t := range tokens {
		if t.kind == tokenEquals {
			break
		}
		if t.kind == tokenNumber {
			out = append(out, t.text)
		}
	}
	return out
}

func sum(fragments []string) int {
	total := 0
	for _, f := range fragments {
		total += parseAddend(f)
	}
	return total
}

// Calculator is the embedded adding machine used to total one activity field.
type Calculator struct {
	Open       bool               `json:"open"`
	Target     model.ActivityKind `json:"target,omitempty"`
	Expression string             `json:"expression"`
	Result     string             `json:"result"`
}

// Start opens the calculator for kind, seeding the result with its current value.
func (c *Calculator) Start(kind model.ActivityKind, current int) {
	if current < 0 {
		current = 0
	}
	c.Open = true
	c.Target = kind
	c.Expression = ""
	c.Result = strconv.Itoa(current)
}

// Close discards all pending state.
func (c *Calculator) Close() {
	*c = Calculator{Result: "0"}
}

func (c *Calculator) finalized() bool {
	return strings.Contains(c.Expression, "=")
}

func (c *Calculator) awaitingAddend() bool {
	return strings.HasSuffix(c.Expression, plusToken)
}

func (c *Calculator) adding() bool {
	return !c.finalized() && strings.Contains(c.Expression, "+")
}

// finalValue returns the number shown after the last equals sign.
func (c *Calculator) finalValue() int {
	tokens := tokenize(c.Expression)
	for i := len(tokens) - 1; i >= 0; i-- {
		switch tokens[i].kind {
		case tokenNumber:
			if i > 0 && tokens[i-1].kind == tokenEquals {
				return parseAddend(tokens[i].text)
			}
		case tokenEquals:
			return 0
		}
	}
	return 0
}

// replaceCurrentAddend swaps the trailing number fragment of the expression for s.
func (c *Calculator) replaceCurrentAddend(s string) {
	i := strings.LastIndex(c.Expression, plusToken)
	if i < 0 {
		c.Expression = s
		return
	}
	c.Expression = c.Expression[:i+len(plusToken)] + s
}

// Digit enters one decimal digit.
func (c *Calculator) Digit(d rune) {
	if d < '0' || d > '9' {
		return
	}
	digit := string(d)
	switch {
	case c.finalized():
		c.Expression = digit
		c.Result = digit
	case c.awaitingAddend():
		c.Expression += digit
		c.Result = digit
	case c.Result == "0" || c.Result == "":
		c.Result = digit
		c.replaceCurrentAddend(digit)
	default:
		c.Result += digit
		if c.Expression == "" {
			c.Expression = c.Result
		} else {
			c.Expression += digit
		}
	}
}

// Add starts a new addend, folding what has been entered so far into a running sum.
func (c *Calculator) Add() {
	switch {
	case c.finalized():
		r := strconv.Itoa(c.finalValue())
		c.Expression = r + plusToken
		c.Result = r
	case c.adding():
		fragments := addends(tokenize(c.Expression))
		if len(fragments) == 0 || fragments[len(fragments)-1] != c.Result {
			fragments = append(fragments, c.Result)
		}
		total := strconv.Itoa(sum(fragments))
		c.Expression = total + plusToken
		c.Result = total
	default:
		base := c.Result
		if base == "" {
			base = "0"
		}
		c.Expression = base + plusToken
	}
}

// Equals totals the expression and shows the result. Pressing it again is a no-op.
func (c *Calculator) Equals() {
	if c.finalized() {
		return
	}
	expr := strings.TrimSuffix(c.Expression, plusToken)
	if strings.TrimSpace(expr) == "" {
		expr = c.Result
		if expr == "" {
			expr = "0"
		}
	}
	total := strconv.Itoa(sum(addends(tokenize(expr))))
	c.Expression = expr + equalsToken + total
	c.Result = total
}

// Clear resets both buffers.
func (c *Calculator) Clear() {
	c.Expression = ""
	c.Result = "0"
}

// Backspace deletes the last character of the result and, unless the
// expression is already totalled, of the expression. A trailing operator
// is removed together with its surrounding spaces.
func (c *Calculator) Backspace() {
	if c.Result != "" {
		c.Result = c.Result[:len(c.Result)-1]
	}
	if c.Result == "" {
		c.Result = "0"
	}
	if c.finalized() || c.Expression == "" {
		return
	}
	if strings.HasSuffix(c.Expression, plusToken) || strings.HasSuffix(c.Expression, equalsToken) {
		c.Expression = c.Expression[:len(c.Expression)-len(plusToken)]
		return
	}
	c.Expression = c.Expression[:len(c.Expression)-1]
}

// Resolve returns the integer that confirming the calculator would commit.
func (c *Calculator) Resolve() int {
	switch {
	case c.adding():
		expr := strings.TrimSuffix(c.Expression, plusToken)
		return sum(addends(tokenize(expr)))
	case c.finalized():
		return c.finalValue()
	default:
		return parseAddend(c.Result)
	}
}

// KeyAction is what a keyboard key asks the hosting session to do.
type KeyAction int

const (
	KeyIgnored KeyAction = iota
	KeyHandled
	KeyClose
)

// Key maps a physical keyboard key onto the on-screen controls.
func (c *Calculator) Key(key string) KeyAction {
	switch key {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		c.Digit(rune(key[0]))
	case "+", "Enter":
		c.Add()
	case "=":
		c.Equals()
	case "Backspace":
		c.Backspace()
	case "Delete", "c", "C":
		c.Clear()
	case "Escape":
		return KeyClose
	default:
		return KeyIgnored
	}
	return KeyHandled
}
