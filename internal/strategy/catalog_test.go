package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		want interface{}
	}{
		{"buy_and_hold", &BuyAndHold{}},
		{"buyhold", &BuyAndHold{}},
		{"momentum", &Momentum{}},
		{"mean_reversion", &MeanReversion{}},
		{"meanreversion", &MeanReversion{}},
		{"trend", &Trend{}},
		{"sma_cross", &Trend{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.name, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, g)
		})
	}
}

func TestBuild_Unknown(t *testing.T) {
	g, err := Build("martingale", nil)
	assert.Nil(t, g)
	assert.EqualError(t, err, `unsupported strategy: "martingale"`)
}

func TestBuild_InvalidParamsReturnUntypedNil(t *testing.T) {
	cases := map[string]Params{
		"momentum":       {"exit_threshold": 0.1},
		"mean_reversion": {"entry_z": 1},
		"trend":          {"fast": 30, "slow": 10},
		"buy_and_hold":   {"confidence": 0},
	}
	for name, p := range cases {
		g, err := Build(name, p)
		require.Error(t, err, name)
		assert.True(t, g == nil, "%s: generator should be a nil interface", name)

		var pe *ParamError
		assert.ErrorAs(t, err, &pe)
	}
}

func TestBuild_FreshStatePerCall(t *testing.T) {
	a, _ := Build("buy_and_hold", nil)
	b, _ := Build("buy_and_hold", nil)
	assert.NotSame(t, a, b)
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 4)
	for _, info := range cat {
		_, err := Build(info.Name, nil)
		assert.NoError(t, err, info.Name)
		assert.NotEmpty(t, info.Parameters, info.Name)
	}
}
