package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelanni/attendance/internal/model"
)

func press(c *Calculator, keys ...string) {
	for _, k := range keys {
		c.Key(k)
	}
}

func newCalc(seed int) *Calculator {
	c := &Calculator{}
	c.Start(model.ActivityLiterature, seed)
	return c
}

func TestCalculatorAddition(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		wantExpr string
		wantRes  string
	}{
		{"single digits", []string{"3", "+", "2", "="}, "3 + 2 = 5", "5"},
		{"multi digit operand", []string{"3", "2", "+", "5", "="}, "32 + 5 = 37", "37"},
		{"chained add folds", []string{"3", "+", "2", "+", "4", "="}, "5 + 4 = 9", "9"},
		{"add after total", []string{"3", "+", "2", "=", "+", "1", "="}, "5 + 1 = 6", "6"},
		{"digit after total starts over", []string{"3", "+", "2", "=", "8"}, "8", "8"},
		{"equals on bare number", []string{"4", "2", "="}, "42 = 42", "42"},
		{"zero then digit replaces", []string{"3", "+", "0", "7", "="}, "3 + 7 = 10", "10"},
		{"trailing plus ignored by equals", []string{"3", "+", "="}, "3 = 3", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCalc(0)
			press(c, tt.keys...)
			assert.Equal(t, tt.wantExpr, c.Expression)
			assert.Equal(t, tt.wantRes, c.Result)
		})
	}
}

func TestCalculatorEqualsIsIdempotent(t *testing.T) {
	c := newCalc(0)
	press(c, "3", "2", "+", "5", "=")
	expr, res := c.Expression, c.Result

	c.Equals()
	assert.Equal(t, res, c.Result)
	assert.Equal(t, expr, c.Expression)
}

func TestCalculatorSeededResult(t *testing.T) {
	c := newCalc(7)
	assert.Equal(t, "7", c.Result)
	assert.Equal(t, 7, c.Resolve())

	press(c, "+", "3")
	assert.Equal(t, "7 + 3", c.Expression)
	assert.Equal(t, 10, c.Resolve())
}

func TestCalculatorBackspace(t *testing.T) {
	t.Run("zero stays zero", func(t *testing.T) {
		c := newCalc(0)
		c.Backspace()
		assert.Equal(t, "0", c.Result)
		assert.Equal(t, "", c.Expression)
	})

	t.Run("finalized expression is untouched", func(t *testing.T) {
		c := newCalc(0)
		press(c, "3", "+", "2", "=")
		c.Backspace()
		assert.Equal(t, "3 + 2 = 5", c.Expression)
		assert.Equal(t, "0", c.Result)
	})

	t.Run("trailing operator removed as a unit", func(t *testing.T) {
		c := newCalc(0)
		press(c, "3", "+")
		assert.Equal(t, "3 + ", c.Expression)
		c.Backspace()
		assert.Equal(t, "3", c.Expression)
	})

	t.Run("digit removed from both buffers", func(t *testing.T) {
		c := newCalc(0)
		press(c, "3", "+", "2", "5")
		c.Backspace()
		assert.Equal(t, "3 + 2", c.Expression)
		assert.Equal(t, "2", c.Result)
	})
}

func TestCalculatorForgivingParse(t *testing.T) {
	c := newCalc(0)
	c.Expression = "3 + abc + 4"
	c.Result = "4"
	c.Equals()
	assert.Equal(t, "3 + abc + 4 = 7", c.Expression)
	assert.Equal(t, "7", c.Result)
	assert.Equal(t, 7, c.Resolve())

	c.Expression = "12 + -5"
	assert.Equal(t, 12, c.Resolve())
}

func TestCalculatorResolve(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"live result only", []string{"1", "2"}, 12},
		{"mid addition", []string{"3", "+", "2"}, 5},
		{"mid addition trailing plus", []string{"3", "+"}, 3},
		{"finalized", []string{"9", "+", "9", "="}, 18},
		{"cleared", []string{"9", "C"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCalc(0)
			press(c, tt.keys...)
			assert.Equal(t, tt.want, c.Resolve())
		})
	}
}

func TestCalculatorKeyboardMatchesButtons(t *testing.T) {
	byKey := newCalc(0)
	press(byKey, "1", "5", "Enter", "7", "Backspace", "8", "=")

	byButton := newCalc(0)
	byButton.Digit('1')
	byButton.Digit('5')
	byButton.Add()
	byButton.Digit('7')
	byButton.Backspace()
	byButton.Digit('8')
	byButton.Equals()

	assert.Equal(t, byButton.Expression, byKey.Expression)
	assert.Equal(t, byButton.Result, byKey.Result)
	assert.Equal(t, "15 + 8 = 23", byKey.Expression)

	assert.Equal(t, KeyClose, byKey.Key("Escape"))
	assert.Equal(t, KeyIgnored, byKey.Key("x"))
}

func TestCalculatorClear(t *testing.T) {
	c := newCalc(0)
	press(c, "3", "+", "4")
	c.Clear()
	assert.Equal(t, "", c.Expression)
	assert.Equal(t, "0", c.Result)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("12 + 3 = 15")
	kinds := make([]tokenKind, 0, len(tokens))
	for _, tk := range tokens {
		kinds = append(kinds, tk.kind)
	}
	assert.Equal(t, []tokenKind{tokenNumber, tokenPlus, tokenNumber, tokenEquals, tokenNumber}, kinds)
	assert.Equal(t, []string{"12", "3"}, addends(tokens))
}
