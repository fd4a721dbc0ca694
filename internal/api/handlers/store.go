package handlers

import (
	"sync"
	"time"

	"equity-backtest/internal/backtest"
	"equity-backtest/internal/config"

	"github.com/google/uuid"
)

// StoredRun is a finished backtest kept for later retrieval.
type StoredRun struct {
	ID        string
	CreatedAt time.Time
	Config    config.BacktestConfig
	Strategy  config.StrategyConfig
	Result    *backtest.Result
}

// RunStore keeps the most recent runs in memory, evicting the oldest once
// full. It is safe for concurrent use.
type RunStore struct {
	mu    sync.RWMutex
	max   int
	runs  map[string]*StoredRun
	order []string
	now   func() time.Time
}

// DefaultStoreSize bounds memory when no size is given.
const DefaultStoreSize = 100

func NewRunStore(max int) *RunStore {
	if max <= 0 {
		max = DefaultStoreSize
	}
	return &RunStore{
		max:  max,
		runs: make(map[string]*StoredRun),
		now:  time.Now,
	}
}

// Put stores a result under a fresh ID.
func (s *RunStore) Put(cfg config.BacktestConfig, sc config.StrategyConfig, res *backtest.Result) *StoredRun {
	run := &StoredRun{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Config:    cfg,
		Strategy:  sc,
		Result:    res,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	for len(s.order) > s.max {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	return run
}

func (s *RunStore) Get(id string) (*StoredRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
