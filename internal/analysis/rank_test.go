package analysis

import (
	"testing"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(sharpe, ret, dd float64) backtest.Report {
	return backtest.Report{
		SharpeRatio: sharpe,
		TotalReturn: ret,
		MaxDrawdown: dd,
		EquityCurve: []model.EquityPoint{{Equity: 1}},
		Trades:      []model.Trade{{Symbol: "X"}},
	}
}

func TestRankReports_BySharpe(t *testing.T) {
	entries := []Entry{
		{Name: "low", Report: report(0.5, 0.10, -0.2)},
		{Name: "broken", Err: "strategy: unsupported strategy"},
		{Name: "high", Report: report(1.5, 0.05, -0.3)},
		{Name: "empty", Report: backtest.Report{Error: backtest.ErrNoEquityData}},
		{Name: "tie-b", Report: report(0.5, 0.10, -0.1)},
	}

	ranked, err := RankReports(entries, BySharpe)
	require.NoError(t, err)
	require.Len(t, ranked, 5)

	assert.Equal(t, "high", ranked[0].Name)
	assert.Equal(t, 1, ranked[0].Rank)
	// Equal sharpe and return fall back to name order.
	assert.Equal(t, "low", ranked[1].Name)
	assert.Equal(t, "tie-b", ranked[2].Name)
	assert.Equal(t, 3, ranked[2].Rank)

	assert.Equal(t, "broken", ranked[3].Name)
	assert.Equal(t, 0, ranked[3].Rank)
	assert.Nil(t, ranked[3].Report)
	assert.Equal(t, "empty", ranked[4].Name)
	assert.Equal(t, backtest.ErrNoEquityData, ranked[4].Error)

	for _, r := range ranked[:3] {
		assert.Nil(t, r.Report.EquityCurve)
		assert.Nil(t, r.Report.Trades)
	}
	// Input reports keep their series.
	assert.NotNil(t, entries[0].Report.EquityCurve)
}

func TestRankReports_Keys(t *testing.T) {
	entries := []Entry{
		{Name: "a", Report: report(2, 0.01, -0.30)},
		{Name: "b", Report: report(1, 0.20, -0.05)},
	}

	byReturn, err := RankReports(entries, ByReturn)
	require.NoError(t, err)
	assert.Equal(t, "b", byReturn[0].Name)

	byDD, err := RankReports(entries, ByDrawdown)
	require.NoError(t, err)
	assert.Equal(t, "b", byDD[0].Name)

	byDefault, err := RankReports(entries, "")
	require.NoError(t, err)
	assert.Equal(t, "a", byDefault[0].Name)
}

func TestRankReports_TieBreaksOnReturn(t *testing.T) {
	ranked, err := RankReports([]Entry{
		{Name: "a", Report: report(1, 0.05, 0)},
		{Name: "b", Report: report(1, 0.10, 0)},
	}, BySharpe)
	require.NoError(t, err)
	assert.Equal(t, "b", ranked[0].Name)
}

func TestRankReports_UnknownKey(t *testing.T) {
	_, err := RankReports(nil, "alpha")
	assert.EqualError(t, err, `unknown rank key "alpha"`)

	out, err := RankReports(nil, ByProfitFactor)
	require.NoError(t, err)
	assert.Empty(t, out)
}
