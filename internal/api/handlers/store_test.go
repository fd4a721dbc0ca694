package handlers

import (
	"sync"
	"testing"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_PutGet(t *testing.T) {
	s := NewRunStore(0)
	res := &backtest.Result{FinalCash: 42}

	run := s.Put(config.BacktestConfig{StartDate: "2024-01-01"}, config.StrategyConfig{Name: "momentum"}, res)
	require.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, ok := s.Get(run.ID)
	require.True(t, ok)
	assert.Same(t, res, got.Result)
	assert.Equal(t, "momentum", got.Strategy.Name)

	_, ok = s.Get("unknown")
	assert.False(t, ok)
}

func TestRunStore_EvictsOldest(t *testing.T) {
	s := NewRunStore(2)
	first := s.Put(config.BacktestConfig{}, config.StrategyConfig{}, nil)
	second := s.Put(config.BacktestConfig{}, config.StrategyConfig{}, nil)
	third := s.Put(config.BacktestConfig{}, config.StrategyConfig{}, nil)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(first.ID)
	assert.False(t, ok)
	_, ok = s.Get(second.ID)
	assert.True(t, ok)
	_, ok = s.Get(third.ID)
	assert.True(t, ok)
}

func TestRunStore_Concurrent(t *testing.T) {
	s := NewRunStore(DefaultStoreSize)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run := s.Put(config.BacktestConfig{}, config.StrategyConfig{}, nil)
			_, _ = s.Get(run.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
