package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	p := Params{
		"f64":   0.5,
		"f32":   float32(0.25),
		"int":   3,
		"int64": int64(7),
		"str":   "1.5",
		"bad":   "abc",
		"name":  "x",
		"nil":   nil,
	}

	assert.Equal(t, 0.5, p.Float("f64", 0))
	assert.Equal(t, 0.25, p.Float("f32", 0))
	assert.Equal(t, 3.0, p.Float("int", 0))
	assert.Equal(t, 7.0, p.Float("int64", 0))
	assert.Equal(t, 1.5, p.Float("str", 0))
	assert.Equal(t, 9.0, p.Float("bad", 9))
	assert.Equal(t, 9.0, p.Float("nil", 9))
	assert.Equal(t, 9.0, p.Float("missing", 9))

	assert.Equal(t, 3, p.Int("int", 0))
	assert.Equal(t, 20, p.Int("missing", 20))

	var empty Params
	assert.Equal(t, 1.0, empty.Float("x", 1))
}

func TestParamError(t *testing.T) {
	err := &ParamError{Strategy: "trend", Param: "slow", Reason: "must be greater than fast"}
	assert.Equal(t, "strategy trend: slow must be greater than fast", err.Error())
}
