package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decikv/decikv/pkg/decimal"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		a, b    string
		scale   int32
		want    string
		wantErr bool
	}{
		{name: "add keeps max scale", op: "add", a: "0.1", b: "0.2", want: "0.3"},
		{name: "sub into negative", op: "sub", a: "1.00", b: "2.5", want: "-1.50"},
		{name: "mul sums scales", op: "mul", a: "1.5", b: "2.5", want: "3.75"},
		{name: "div rounds half to even", op: "div", a: "1", b: "8", scale: 2, want: "0.12"},
		{name: "div integer scale", op: "div", a: "7", b: "2", scale: 0, want: "4"},
		{name: "div by zero", op: "div", a: "1", b: "0", scale: 2, wantErr: true},
		{name: "unknown op", op: "pow", a: "1", b: "2", wantErr: true},
		{name: "bad left operand", op: "add", a: "abc", b: "2", wantErr: true},
		{name: "bad right operand", op: "add", a: "1", b: "1e5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluate(tt.op, tt.a, tt.b, tt.scale)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateTransform(t *testing.T) {
	two := decimal.MustParse("2")

	t.Run("unknown op", func(t *testing.T) {
		_, err := updateTransform("pow", two, 0)
		assert.Error(t, err)
	})

	t.Run("add transform", func(t *testing.T) {
		fn, err := updateTransform("add", two, 0)
		assert.NoError(t, err)

		got, err := fn(decimal.MustParse("40"))
		assert.NoError(t, err)
		assert.Equal(t, "42", got.String())
	})

	t.Run("div transform honors scale", func(t *testing.T) {
		fn, err := updateTransform("div", decimal.MustParse("3"), 4)
		assert.NoError(t, err)

		got, err := fn(decimal.MustParse("1"))
		assert.NoError(t, err)
		assert.Equal(t, "0.3333", got.String())
	})
}
